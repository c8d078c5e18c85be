package platform

import (
	"net/url"
	"strings"
)

// Platform is a supported source site.
type Platform struct {
	Name  string
	hosts []string
}

var supported = []Platform{
	{Name: "YouTube", hosts: []string{"youtube.com", "youtu.be", "music.youtube.com"}},
	{Name: "TikTok", hosts: []string{"tiktok.com", "vm.tiktok.com"}},
	{Name: "Instagram", hosts: []string{"instagram.com"}},
	{Name: "Twitter", hosts: []string{"twitter.com", "x.com"}},
	{Name: "Facebook", hosts: []string{"facebook.com", "fb.watch"}},
	{Name: "Reddit", hosts: []string{"reddit.com", "redd.it"}},
	{Name: "Vimeo", hosts: []string{"vimeo.com"}},
	{Name: "Twitch", hosts: []string{"twitch.tv", "clips.twitch.tv"}},
	{Name: "SoundCloud", hosts: []string{"soundcloud.com"}},
}

// Detect reports the platform a URL belongs to. It returns false for
// anything that is not an http(s) URL on a supported host.
func Detect(raw string) (Platform, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Platform{}, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Platform{}, false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return Platform{}, false
	}
	for _, p := range supported {
		for _, h := range p.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return p, true
			}
		}
	}
	return Platform{}, false
}
