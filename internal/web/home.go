package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func Home(settings HomeSettings, sessions []SessionSummary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, _ = io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Scribble</title>
    <style>
      body { font-family: system-ui, sans-serif; margin: 2rem; }
      table { border-collapse: collapse; }
      th, td { padding: 0.25rem 0.75rem; text-align: left; }
      .empty { color: #777; }
    </style>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <h1>Scribble</h1>
        <p>`)
		_, _ = io.WriteString(w, i64toa(settings.DrawingSeconds)+"s to draw, "+
			i64toa(settings.PreparationSeconds)+"s between turns, "+
			itoa(settings.MaxRounds)+" rounds.")
		_, _ = io.WriteString(w, `</p>
      </header>
      <section class="panel">
        <h2>Active sessions</h2>
        <div id="sessions">`)
		if err := ActiveSessionsList(sessions).Render(ctx, w); err != nil {
			return err
		}
		_, _ = io.WriteString(w, `</div>
      </section>
    </main>
    <script>
      const target = document.getElementById("sessions");
      const proto = location.protocol === "https:" ? "wss://" : "ws://";
      const ws = new WebSocket(proto + location.host + "/ws/home");
      ws.onmessage = (msg) => {
        const data = JSON.parse(msg.data);
        if (typeof data.html === "string") {
          target.innerHTML = data.html;
        }
      };
    </script>
  </body>
</html>`)
		return nil
	})
}

func ActiveSessionsList(sessions []SessionSummary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(sessions) == 0 {
			_, err := io.WriteString(w, `<p class="empty">No sessions yet.</p>`)
			return err
		}
		_, _ = io.WriteString(w, `<table><thead><tr><th>Session</th><th>Status</th><th>Round</th><th>Players</th></tr></thead><tbody>`)
		for _, s := range sessions {
			_, _ = io.WriteString(w, `<tr class="`+templ.EscapeString(statusClass(s.Status))+`"><td>`)
			_, _ = io.WriteString(w, templ.EscapeString(s.ID))
			_, _ = io.WriteString(w, `</td><td>`+templ.EscapeString(s.Status)+`</td><td>`)
			_, _ = io.WriteString(w, roundLabel(s))
			_, _ = io.WriteString(w, `</td><td>`+itoa(s.Players)+`</td></tr>`)
		}
		_, err := io.WriteString(w, `</tbody></table>`)
		return err
	})
}
