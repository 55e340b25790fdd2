package rtc

import (
	"net/url"
	"strings"

	"github.com/pion/webrtc/v4"
	"github.com/samber/lo"
)

// ICEServers turns configured URLs into the list handed to browsers on
// connect. TURN entries may carry credentials as
// "turn:host:3478?username=u&credential=p"; the query is stripped from the
// URL and moved into the server entry.
func ICEServers(urls []string) []webrtc.ICEServer {
	urls = lo.Uniq(lo.Compact(lo.Map(urls, func(u string, _ int) string { return strings.TrimSpace(u) })))
	return lo.Map(urls, func(raw string, _ int) webrtc.ICEServer {
		base, query, found := strings.Cut(raw, "?")
		if !found {
			return webrtc.ICEServer{URLs: []string{raw}}
		}
		q, err := url.ParseQuery(query)
		if err != nil || q.Get("username") == "" {
			return webrtc.ICEServer{URLs: []string{raw}}
		}
		return webrtc.ICEServer{
			URLs:       []string{base},
			Username:   q.Get("username"),
			Credential: q.Get("credential"),
		}
	})
}

