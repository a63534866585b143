// Package media defines shared types for the fbstory application.
package media

// Title is reported for every resolved story.
const Title = "Facebook Story"

// Request describes a single resolution invocation.
type Request struct {
	TargetURL  string // Share, reel, watch or story.php link
	CookieFile string // Netscape cookie file, ignored when missing
	ProxyFile  string // File whose first line is a proxy URL
}

// StoryID identifies a story. An empty UserID means the owner is unknown.
type StoryID struct {
	FBID   string
	UserID string
}

// SourceKind records which heuristic produced a candidate.
type SourceKind int

const (
	JSONField SourceKind = iota
	VideoVersions
	MP4Pattern
	MetaOG
	RedirectSrc
)

func (k SourceKind) String() string {
	switch k {
	case JSONField:
		return "json_field"
	case VideoVersions:
		return "video_versions"
	case MP4Pattern:
		return "mp4_pattern"
	case MetaOG:
		return "meta_og"
	case RedirectSrc:
		return "redirect_src"
	default:
		return "unknown"
	}
}

// Candidate is a provisionally extracted video URL awaiting scoring.
type Candidate struct {
	URL    string     // Absolute, normalized http(s) URL
	Source SourceKind // Heuristic that found it
}

// Outcome is the terminal state of a resolution.
type Outcome int

const (
	Resolved Outcome = iota
	Blocked
	ConsentWalled
	NotFound
	TransportError
)

func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case Blocked:
		return "blocked"
	case ConsentWalled:
		return "consent_walled"
	case NotFound:
		return "not_found"
	case TransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Verdict is the only value a resolution returns.
type Verdict struct {
	Outcome  Outcome
	VideoURL string // Set when Outcome is Resolved
	Title    string // Set when Outcome is Resolved
	Message  string // User-facing error otherwise
}

// Output is the JSON object printed for a verdict.
type Output struct {
	VideoURL string `json:"video_url,omitempty"`
	Title    string `json:"title,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Output converts the verdict to its printable form.
func (v Verdict) Output() Output {
	if v.Outcome == Resolved {
		return Output{VideoURL: v.VideoURL, Title: v.Title}
	}
	return Output{Error: v.Message}
}

// Success builds a resolved verdict.
func Success(videoURL string) Verdict {
	return Verdict{Outcome: Resolved, VideoURL: videoURL, Title: Title}
}

// Failure builds an unresolved verdict with a user-facing message.
func Failure(outcome Outcome, message string) Verdict {
	return Verdict{Outcome: outcome, Message: message}
}
