package subscription

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// StreamFormat is the path suffix selecting the newline-delimited JSON stream.
const StreamFormat = "json"

var (
	// ErrInvalidEndpoint indicates the server endpoint is not an absolute http(s) URL.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrInvalidTopic indicates the topic name is empty or contains unsupported characters.
	ErrInvalidTopic = errors.New("invalid topic")
)

// topicPattern matches the topic names accepted by ntfy servers.
var topicPattern = regexp.MustCompile(`^[-_A-Za-z0-9]{1,64}$`)

// ValidateTopic checks that topic is a valid ntfy topic name.
func ValidateTopic(topic string) error {
	if !topicPattern.MatchString(topic) {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}

	return nil
}

// ParseEndpoint parses and validates a server endpoint.
//
// The endpoint must be an absolute http or https URL. A base path is kept, a trailing
// slash is dropped, and query/fragment components are rejected.
func ParseEndpoint(endpoint string) (*url.URL, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidEndpoint, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidEndpoint, endpoint)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("%w: query or fragment not allowed in %q", ErrInvalidEndpoint, endpoint)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""

	return u, nil
}

// BuildURL returns the subscription stream URL for a topic resuming at since.
//
// Parameters:
//   - endpoint: Server base URL (e.g., "https://ntfy.sh")
//   - topic: Topic name
//   - since: Resume cursor in unix seconds; 0 requests all cached messages
//
// Returns:
//   - string: "<endpoint>/<topic>/json?since=<since>"
//   - error: ErrInvalidEndpoint or ErrInvalidTopic
//
// Example:
//
//	u, _ := subscription.BuildURL("https://ntfy.sh", "alerts", 1635528757)
//	// https://ntfy.sh/alerts/json?since=1635528757
func BuildURL(endpoint, topic string, since uint64) (string, error) {
	u, err := ParseEndpoint(endpoint)
	if err != nil {
		return "", err
	}
	if err := ValidateTopic(topic); err != nil {
		return "", err
	}

	u.Path = u.Path + "/" + topic + "/" + StreamFormat
	q := url.Values{}
	q.Set("since", strconv.FormatUint(since, 10))
	u.RawQuery = q.Encode()

	return u.String(), nil
}
