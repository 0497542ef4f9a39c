package site

import "html/template"

// layoutTemplate wraps a rendered index page with navigation across all
// registered indexes. Entry order inside Content is parse order; nothing in
// the layout reorders links.
var layoutTemplate = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.6; color: #1a202c; }
nav { border-bottom: 1px solid #e2e8f0; padding-bottom: .75rem; margin-bottom: 1.5rem; }
nav a { margin-right: 1rem; color: #2b6cb0; text-decoration: none; }
nav a.active { font-weight: 600; }
main a { color: #2b6cb0; }
li { margin-bottom: .35rem; }
</style>
{{if .LiveReload}}<script>
(function () {
  var ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === "reload") { location.reload(); }
  };
})();
</script>{{end}}
</head>
<body>
<nav>
{{range .Nav}}<a href="{{.Href}}"{{if .Active}} class="active"{{end}}>{{.Title}}</a>
{{end}}</nav>
<main>
{{.Content}}
</main>
</body>
</html>
`))

// NavItem is one navigation link in the layout
type NavItem struct {
	Title  string
	Href   string
	Active bool
}

// layoutData feeds layoutTemplate
type layoutData struct {
	Title      string
	Nav        []NavItem
	Content    template.HTML
	LiveReload bool
}
