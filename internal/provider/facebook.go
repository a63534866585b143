package provider

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"fbstory/internal/detect"
	"fbstory/internal/extract"
	"fbstory/internal/httputil"
	"fbstory/internal/media"
	"fbstory/internal/story"
)

// User-facing failure messages.
const (
	MsgBlocked       = "Facebook temporarily blocked this action for the current account/IP. Please wait and retry."
	MsgStoryNotFound = "Could not find exact story video by story_fbid. Please ensure valid cookies for this account."
	MsgVideoNotFound = "Could not find video link in Facebook story page. Please ensure you uploaded valid cookies."
)

// Facebook resolves Facebook story, reel and share links.
type Facebook struct {
	fetcher  Fetcher
	detector *detect.Detector
}

// NewFacebook creates a Facebook resolver.
func NewFacebook(fetcher Fetcher, detector *detect.Detector) *Facebook {
	return &Facebook{fetcher: fetcher, detector: detector}
}

// resolution holds the state of a single Resolve call.
type resolution struct {
	fb      *Facebook
	log     zerolog.Logger
	fetched map[string]bool
	working string
	page    *extract.Page
	storyID media.StoryID
}

// Resolve follows target to its story page and returns the video it carries.
// Hostile pages get one retry on the mobile site before failing.
func (f *Facebook) Resolve(ctx context.Context, target string) media.Verdict {
	target = httputil.Normalize(strings.TrimSpace(target))
	r := &resolution{
		fb:      f,
		log:     zerolog.Ctx(ctx).With().Str("target", target).Logger(),
		fetched: make(map[string]bool),
		working: target,
	}
	return r.run(ctx, target)
}

func (r *resolution) debug(state, url string) *zerolog.Event {
	ev := r.log.Debug().Str("state", state).Str("url", url)
	if r.storyID.FBID != "" {
		ev = ev.Str("story_fbid", r.storyID.FBID)
	}
	return ev
}

func (r *resolution) run(ctx context.Context, target string) media.Verdict {
	effective, err := r.fb.fetcher.ResolveEffective(ctx, target)
	if err != nil {
		r.debug("resolve_effective", target).Err(err).Msg("Redirect resolution failed, keeping original URL")
		effective = target
	} else {
		r.debug("resolve_effective", effective).Msg("Resolved effective URL")
	}

	if detect.IsConsentURL(effective) {
		r.debug("classify_url", effective).Msg("Effective URL is a consent wall")
		return r.mobileFallback(ctx, target, media.Failure(media.ConsentWalled, MsgBlocked))
	}
	if detect.ShouldRefetch(effective) {
		r.working = effective
	}

	if v, ok := r.load(ctx, r.working); !ok {
		return v
	}

	if meta, ok := extract.MetaCanonicalURL(r.page); ok {
		if detect.IsConsentURL(meta) {
			r.debug("classify_body", meta).Msg("Canonical URL is a consent wall")
			return r.mobileFallback(ctx, r.working, media.Failure(media.ConsentWalled, MsgBlocked))
		}
		if detect.ShouldRefetch(meta) && !httputil.SameURL(meta, r.working) && !r.seen(meta) {
			r.working = httputil.Normalize(meta)
			r.debug("refetch_canonical", r.working).Msg("Following canonical URL")
			if v, ok := r.load(ctx, r.working); !ok {
				return v
			}
		}
	}

	id, ok := story.FromURL(r.working)
	if !ok {
		id, ok = story.FromText(r.page.Text)
	}
	if ok {
		r.storyID = id
		r.debug("locate_story", r.working).Str("user_id", id.UserID).Msg("Located story")

		if !detect.IsStoryEndpoint(r.working) {
			storyURL := story.BuildURL(id)
			if r.seen(storyURL) {
				r.debug("refetch_canonical", storyURL).Msg("Story page already fetched")
			} else {
				r.debug("refetch_canonical", storyURL).Msg("Fetching story page")
				if v, ok := r.load(ctx, storyURL); !ok {
					return v
				}
			}
		}

		c, ok := parseStoryVideo(r.page, id)
		if !ok {
			r.debug("extract_candidates", r.working).Msg("No video tied to story")
			return media.Failure(media.NotFound, MsgStoryNotFound)
		}
		return r.success(c)
	}

	c, ok := parsePageVideo(r.page)
	if !ok {
		r.debug("extract_candidates", r.working).Msg("No video on page")
		return media.Failure(media.NotFound, MsgVideoNotFound)
	}
	return r.success(c)
}

// load fetches url as the current page. A transport failure or block page
// triggers the mobile fallback, whose verdict is returned with ok false.
func (r *resolution) load(ctx context.Context, url string) (media.Verdict, bool) {
	r.markFetched(url)
	body, err := r.fb.fetcher.Fetch(ctx, url)
	if err != nil {
		r.debug("fetch", url).Err(err).Msg("Fetch failed")
		return r.mobileFallback(ctx, url, media.Failure(media.TransportError, err.Error())), false
	}
	if r.fb.detector.IsTemporaryBlockPage(body) {
		r.debug("classify_body", url).Msg("Temporary block page")
		return r.mobileFallback(ctx, url, media.Failure(media.Blocked, MsgBlocked)), false
	}

	r.debug("fetch", url).Int("bytes", len(body)).Msg("Fetched page")
	r.page = extract.NewPage(body)
	return media.Verdict{}, true
}

// mobileFallback retries url on the mobile site and returns failure when that finds nothing.
// It ends the resolution, so it runs at most once. Hosts without a mobile variant are
// refetched as they are.
func (r *resolution) mobileFallback(ctx context.Context, url string, failure media.Verdict) media.Verdict {
	mobile := httputil.ToMobileVariant(url)
	r.markFetched(mobile)

	r.debug("mobile_fallback", mobile).Str("reason", failure.Outcome.String()).Msg("Trying mobile site")
	body, err := r.fb.fetcher.Fetch(ctx, mobile)
	if err != nil || body == "" {
		r.debug("mobile_fallback", mobile).AnErr("fetch_error", err).Msg("Mobile site returned nothing")
		return failure
	}

	c, ok := parseMobileVideo(extract.NewPage(body))
	if !ok {
		r.debug("mobile_fallback", mobile).Msg("No video on mobile page")
		return failure
	}
	return r.success(c)
}

func (r *resolution) success(c media.Candidate) media.Verdict {
	videoURL := httputil.StripByteRange(c.URL)
	r.debug("done", videoURL).Str("source", c.Source.String()).Msg("Resolved video")
	return media.Success(videoURL)
}

func (r *resolution) seen(url string) bool {
	return r.fetched[httputil.Normalize(url)]
}

func (r *resolution) markFetched(url string) {
	r.fetched[httputil.Normalize(url)] = true
}
