package bootstrap

import (
	"net/url"
	"strings"
)

// originHosts turns CORS origins ("http://localhost:5173") into the host
// patterns the websocket handshake checks ("localhost:5173").
func originHosts(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			out = append(out, "*")
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
			continue
		}
		out = append(out, o)
	}
	return out
}
