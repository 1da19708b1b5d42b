// Package bbcode turns chat messages written in BBCode into plain text and style runs.
//
// The markup is a flat set of bracket tags, e.g. "[b]bold[/b]" or "[color=red]red[/color]".
// The parser never fails: tags it cannot make sense of stay in the text as they are,
// and the problems are reported as [Warning]s.
//
// # Pipeline
//
//  1. HTML entities are decoded (and optionally HTML tags stripped), newlines untouched.
//  2. The tokenizer scans the text once, removing recognized tags and recording spans.
//     Closing tags close the newest open span of their own type, so crossed tags
//     like "[b]a[i]b[/b]c[/i]" are both closed.
//  3. Closed spans become [StyleRun]s. Empty links get a placeholder text, private
//     channel identifiers get replaced with their display names.
//  4. Tags which are never closed are put back into the text.
//
// Offsets are rune offsets into [Result.Text]. Every edit of the text is logged, and
// offsets are rebased through the log instead of being adjusted by hand.
package bbcode

import (
	"context"

	"github.com/rs/zerolog"
)

// DefaultPendingGlyph is the name of the image shown while an icon is being fetched.
const DefaultPendingGlyph = "ic_chat_priv"

// ImageFetcher loads images for icon and emote tags.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Result is the outcome of parsing a single message.
type Result struct {
	// Text is the message without markup.
	Text string `json:"text"`

	// Runs are the styles over Text, in the order the tags were found.
	Runs []StyleRun `json:"runs"`

	// Warnings describe the markup which could not be interpreted.
	Warnings []Warning `json:"warnings"`
}

// Placeholders returns the image placeholders of the result in order.
func (r Result) Placeholders() []*Placeholder {
	var out []*Placeholder
	for _, run := range r.Runs {
		if p, ok := run.Payload.(ImagePayload); ok && p.Placeholder != nil {
			out = append(out, p.Placeholder)
		}
	}
	return out
}

// Wait blocks until every image of the result is either fetched or failed, or ctx is done.
func (r Result) Wait(ctx context.Context) error {
	for _, p := range r.Placeholders() {
		if _, err := p.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Parser converts BBCode messages. It's immutable and safe for concurrent use.
type Parser struct {
	links           Links
	linkPlaceholder string
	pendingGlyph    string
	stripHTML       bool

	fetcher  ImageFetcher
	dispatch func(func())
	onReady  func(*Placeholder)

	logger zerolog.Logger
}

// Option is a decorator function which allows to set optional fields of the [Parser].
type Option func(p *Parser)

// WithLinks sets the endpoints used to build profile and image addresses.
func WithLinks(l Links) Option {
	return func(p *Parser) {
		p.links = l
	}
}

// WithLinkPlaceholder sets the text inserted in place of an empty link tag.
func WithLinkPlaceholder(s string) Option {
	return func(p *Parser) {
		if s != "" {
			p.linkPlaceholder = s
		}
	}
}

// WithPendingGlyph sets the image name shown while icons are being fetched.
func WithPendingGlyph(glyph string) Option {
	return func(p *Parser) {
		if glyph != "" {
			p.pendingGlyph = glyph
		}
	}
}

// WithStripHTML makes the parser remove HTML tags before decoding entities.
func WithStripHTML(strip bool) Option {
	return func(p *Parser) {
		p.stripHTML = strip
	}
}

// WithImageFetcher sets the fetcher of icon and emote images. Without a fetcher
// every image stays pending.
func WithImageFetcher(f ImageFetcher) Option {
	return func(p *Parser) {
		p.fetcher = f
	}
}

// WithDispatcher sets the function used to deliver image updates, e.g. onto
// the UI goroutine. By default updates run on the fetching goroutine.
func WithDispatcher(dispatch func(func())) Option {
	return func(p *Parser) {
		if dispatch != nil {
			p.dispatch = dispatch
		}
	}
}

// WithImageReady sets the callback invoked, through the dispatcher, after a placeholder
// has switched to the fetched image.
func WithImageReady(fn func(*Placeholder)) Option {
	return func(p *Parser) {
		p.onReady = fn
	}
}

// WithLogger sets the logger. The parser is silent by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// NewParser creates a [Parser] with the default endpoints and the given options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		links:           DefaultLinks(),
		linkPlaceholder: DefaultLinkPlaceholder,
		pendingGlyph:    DefaultPendingGlyph,
		dispatch:        func(fn func()) { fn() },
		logger:          zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

var defaultParser = NewParser()

// Parse converts the message with the default [Parser]. Images stay pending.
func Parse(input string) Result {
	return defaultParser.Parse(context.Background(), input)
}

// Parse converts the message into plain text and style runs.
//
// Parsing itself is synchronous. Images are fetched in the background: ctx bounds
// the fetches, and once it's done the results are discarded.
func (p *Parser) Parse(ctx context.Context, input string) Result {
	var text string
	if p.stripHTML {
		text = StripHTML(input)
	} else {
		text = Unescape(input)
	}

	warns := make([]Warning, 0)

	res := resolver{
		buf:    newBuffer(text),
		warns:  &warns,
		logger: p.logger,
	}
	res.run()

	m := materializer{
		parser: p,
		buf:    res.buf,
		spans:  res.spans,
		warns:  &warns,
	}
	runs := m.run()

	for _, f := range m.fetches {
		p.fetch(ctx, f)
	}

	p.logger.Debug().
		Int("spans", len(res.spans)).
		Int("runs", len(runs)).
		Int("warnings", len(warns)).
		Msg("message parsed")

	return Result{
		Text:     res.buf.String(),
		Runs:     runs,
		Warnings: warns,
	}
}

// fetchRequest is an image to load for a placeholder.
type fetchRequest struct {
	url         string
	placeholder *Placeholder
}

// fetch starts loading the image in the background.
//
// A failed fetch leaves the placeholder pending for good. A fetch which completes
// after ctx is done is discarded and the callback is never invoked.
func (p *Parser) fetch(ctx context.Context, f fetchRequest) {
	if p.fetcher == nil {
		f.placeholder.finish(nil)
		return
	}

	go func() {
		data, err := p.fetcher.Fetch(ctx, f.url)

		if err != nil {
			p.logger.Warn().Err(err).Str("url", f.url).Msg("cannot fetch image")
			f.placeholder.finish(nil)
			return
		}

		if ctx.Err() != nil {
			f.placeholder.finish(nil)
			return
		}

		p.dispatch(func() {
			// the view might have been discarded while we were waiting for the dispatcher
			if ctx.Err() != nil {
				f.placeholder.finish(nil)
				return
			}

			if data == nil {
				data = []byte{}
			}

			if f.placeholder.finish(data) && p.onReady != nil {
				p.onReady(f.placeholder)
			}
		})
	}()
}
