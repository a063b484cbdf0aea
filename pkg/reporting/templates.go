/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: templates.go
Description: HTML template of the batch summary report.
*/

package reporting

// summaryTemplate renders a Summary
const summaryTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - {{.BatchID}}</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
            color: #333;
        }

        .container {
            max-width: 1100px;
            margin: 0 auto;
            padding: 20px;
        }

        .header, .panel, .stat-card {
            background: rgba(255, 255, 255, 0.95);
            border-radius: 15px;
            padding: 25px;
            margin-bottom: 20px;
            box-shadow: 0 8px 32px rgba(0, 0, 0, 0.1);
        }

        .header h1 {
            color: #4a5568;
            font-size: 2rem;
        }

        .header p, .stat-card .label {
            color: #718096;
        }

        .stats-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 20px;
        }

        .stat-card .value {
            font-size: 2rem;
            font-weight: 700;
            color: #2d3748;
        }

        table {
            width: 100%;
            border-collapse: collapse;
        }

        th, td {
            text-align: left;
            padding: 8px;
            border-bottom: 1px solid #e2e8f0;
        }

        .bar {
            height: 12px;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            border-radius: 6px;
        }

        .failure td { color: #c53030; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h1>{{.Title}}</h1>
        <p>Batch <span id="batch-id">{{.BatchID}}</span>, generated {{ago .GeneratedAt}}, took {{.Duration}}</p>
    </div>

    <div class="stats-grid">
        <div class="stat-card"><div class="value" id="records">{{comma .Stats.Records}}</div><div class="label">Records</div></div>
        <div class="stat-card"><div class="value" id="icons-found">{{comma .Stats.IconsFound}}</div><div class="label">Icons found</div></div>
        <div class="stat-card"><div class="value" id="found-ratio">{{percent .FoundRatio}}</div><div class="label">Found ratio</div></div>
        <div class="stat-card"><div class="value" id="layout-hits">{{comma .Stats.LayoutHits}}</div><div class="label">With layout texts</div></div>
        <div class="stat-card"><div class="value" id="embedded-hits">{{comma .Stats.EmbeddedHits}}</div><div class="label">With embedded texts</div></div>
        <div class="stat-card"><div class="value" id="failed">{{comma .Stats.Failed}}</div><div class="label">Failed</div></div>
        <div class="stat-card"><div class="value" id="image-bytes">{{bytes .ImageBytes}}</div><div class="label">Icon pixels</div></div>
    </div>

    <div class="panel">
        <h3>Rank buckets</h3>
        <table id="buckets">
            <tr><th>Bucket</th><th>Icons</th></tr>
            {{range .Buckets}}<tr class="bucket"><td>{{.Name}}</td><td>{{.Count}}</td></tr>
            {{end}}
        </table>
    </div>

    <div class="panel">
        <h3>Default languages</h3>
        <table id="languages">
            <tr><th>Language</th><th>Apps</th></tr>
            {{range .Languages}}<tr class="language"><td>{{.Name}}</td><td>{{.Count}}</td></tr>
            {{end}}
        </table>
    </div>

    {{if .Failures}}
    <div class="panel">
        <h3>Failures</h3>
        <table id="failures">
            <tr><th>Record</th><th>Error</th></tr>
            {{range .Failures}}<tr class="failure"><td>{{.Record}}</td><td>{{.Error}}</td></tr>
            {{end}}
        </table>
    </div>
    {{end}}

    {{if .Missing}}
    <div class="panel">
        <h3>Icons not found</h3>
        <ul id="missing">
            {{range .Missing}}<li>{{.}}</li>
            {{end}}
        </ul>
    </div>
    {{end}}
</div>
</body>
</html>
`
