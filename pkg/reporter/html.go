package reporter

import (
	"fmt"
	"html/template"
	"io"
)

const htmlTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>kube-trim Report - {{.SessionID}}</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #333;
            padding: 20px;
            line-height: 1.6;
        }
        .container {
            max-width: 1400px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);
            overflow: hidden;
        }
        .header {
            background: linear-gradient(135deg, #326ce5 0%, #1a4d8f 100%);
            color: white;
            padding: 40px;
        }
        .header h1 {
            font-size: 2.2em;
            margin-bottom: 10px;
        }
        .header .meta {
            opacity: 0.95;
        }
        table {
            width: 100%;
            border-collapse: collapse;
        }
        th, td {
            padding: 12px 16px;
            text-align: left;
            border-bottom: 1px solid #e8eaed;
        }
        th {
            background: #f8f9fa;
            color: #5f6368;
            font-size: 0.8em;
            text-transform: uppercase;
            letter-spacing: 1px;
        }
        .ratio-over {
            color: #d93025;
            font-weight: 600;
        }
        .ratio-under {
            color: #188038;
            font-weight: 600;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Right-Sizing Report</h1>
            <div class="meta">
                Session <strong>{{.SessionID}}</strong> &middot;
                Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}} &middot;
                {{.SampleCount}} pod samples across {{len .Recommendations}} images
            </div>
        </div>
        <table>
            <thead>
                <tr>
                    <th>Image</th>
                    <th>Avg CPU (m)</th>
                    <th>Max CPU (m)</th>
                    <th>Avg Mem (Mi)</th>
                    <th>Max Mem (Mi)</th>
                    <th>Requested Mem (Mi)</th>
                    <th>Recommended CPU (m)</th>
                    <th>Recommended Mem (Mi)</th>
                    <th>CPU Over-Prov.</th>
                    <th>Mem Over-Prov.</th>
                </tr>
            </thead>
            <tbody>
                {{range .Recommendations}}
                <tr>
                    <td>{{.Image}}</td>
                    <td>{{printf "%.2f" .AvgCPU}}</td>
                    <td>{{.MaxCPU}}</td>
                    <td>{{printf "%.2f" .AvgMemory}}</td>
                    <td>{{.MaxMemory}}</td>
                    <td>{{.RequestedMemory}}</td>
                    <td>{{printf "%.2f" .RecommendedCPU}}</td>
                    <td>{{printf "%.2f" .RecommendedMemory}}</td>
                    <td class="{{ratioClass .CPUOverProvisionedRatio}}">{{printf "%.2f" .CPUOverProvisionedRatio}}</td>
                    <td class="{{ratioClass .MemoryOverProvisionedRatio}}">{{printf "%.2f" .MemoryOverProvisionedRatio}}</td>
                </tr>
                {{end}}
            </tbody>
        </table>
    </div>
</body>
</html>
`

// GenerateHTML creates an HTML report
func GenerateHTML(report *Report, writer io.Writer) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"ratioClass": func(r float64) string {
			if r > 1 {
				return "ratio-over"
			}
			return "ratio-under"
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}

	if err := tmpl.Execute(writer, report); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}
