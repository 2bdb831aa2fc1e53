package intel

import (
	"bufio"
	"net"
	"net/url"
	"os"
	"strings"
	"unicode"

	"apkrisk/pkg/logger"
)

// FeedIntel answers reputation lookups against plain text indicator feeds
// (Maltrail or AbuseIPDB exports). Each feed line holds one IP address or
// domain name; lines starting with "#" are comments. An indicator present
// in any feed is malicious, everything else is clean.
type FeedIntel struct {
	badIPs     map[string]struct{}
	badDomains map[string]struct{}
	logger     *logger.Logger
}

// LoadFeeds builds a FeedIntel from the given feed files. Missing files are
// skipped with a warning so a partially provisioned deployment still starts.
func LoadFeeds(paths []string, log *logger.Logger) (*FeedIntel, error) {
	f := &FeedIntel{
		badIPs:     make(map[string]struct{}),
		badDomains: make(map[string]struct{}),
		logger:     log.WithComponent("intel"),
	}

	for _, p := range paths {
		file, err := os.Open(p)
		if err != nil {
			f.logger.Warn().Err(err).Str("path", p).Msg("skipping unreadable feed file")
			continue
		}

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			f.add(line)
		}
		err = scanner.Err()
		file.Close()
		if err != nil {
			return nil, err
		}
	}

	f.logger.Info().
		Int("ips", len(f.badIPs)).
		Int("domains", len(f.badDomains)).
		Msg("loaded threat intelligence feeds")

	return f, nil
}

func (f *FeedIntel) add(line string) {
	if hasLetter(line) {
		f.badDomains[strings.ToLower(line)] = struct{}{}
	} else {
		f.badIPs[line] = struct{}{}
	}
}

// IsMalicious reports whether the host behind a runtime endpoint appears in
// the loaded feeds. The endpoint may be a full URL or a bare host:port.
func (f *FeedIntel) IsMalicious(endpoint string) bool {
	host := extractHost(endpoint)
	if host == "" {
		return false
	}
	if _, ok := f.badIPs[host]; ok {
		return true
	}
	_, ok := f.badDomains[strings.ToLower(host)]
	return ok
}

// Size returns the total number of loaded indicators.
func (f *FeedIntel) Size() int {
	return len(f.badIPs) + len(f.badDomains)
}

func extractHost(endpoint string) string {
	s := strings.TrimSpace(endpoint)
	if s == "" {
		return ""
	}

	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			s = u.Host
		}
	}

	// Strip any path left over from schemeless endpoints like "host/path".
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}

	if host, _, err := net.SplitHostPort(s); err == nil {
		return host
	}
	return s
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
