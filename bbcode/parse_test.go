package bbcode

import (
	"context"
	"image/color"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func issues(warns []Warning) []Issue {
	out := make([]Issue, 0, len(warns))
	for _, w := range warns {
		out = append(out, w.Issue)
	}
	return out
}

func TestParse_SimpleTags(t *testing.T) {
	testCases := []struct {
		input string
		text  string
		kind  StyleKind
	}{
		{"[b]hi[/b]", "hi", KindBold},
		{"[i]hi[/i]", "hi", KindItalic},
		{"[u]hi[/u]", "hi", KindUnderline},
		{"[s]hi[/s]", "hi", KindStrikethrough},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			res := Parse(tc.input)

			require.Equal(t, tc.text, res.Text)
			require.Empty(t, res.Warnings)
			require.Equal(t, []StyleRun{{Start: 0, End: 2, Kind: tc.kind, Inclusive: true}}, res.Runs)
		})
	}
}

func TestParse_ScriptTags(t *testing.T) {
	res := Parse("x[sup]2[/sup]")

	require.Equal(t, "x2", res.Text)
	require.Equal(t, []StyleRun{
		{Start: 1, End: 2, Kind: KindSuperscript, Inclusive: true},
		{Start: 1, End: 2, Kind: KindRelativeSize, Inclusive: true, Payload: SizePayload{Scale: 0.8}},
	}, res.Runs)

	res = Parse("H[sub]2[/sub]O")

	require.Equal(t, "H2O", res.Text)
	require.Len(t, res.Runs, 2)
	require.Equal(t, KindSubscript, res.Runs[0].Kind)
	require.Equal(t, KindRelativeSize, res.Runs[1].Kind)
}

func TestParse_Color(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  color.RGBA
	}{
		{"name", "[color=red]x[/color]", color.RGBA{R: 0xff, A: 0xff}},
		{"upper case name", "[color=Blue]x[/color]", color.RGBA{B: 0xff, A: 0xff}},
		{"hex", "[color=#ff8000]x[/color]", color.RGBA{R: 0xff, G: 0x80, A: 0xff}},
		{"short hex", "[color=#0f0]x[/color]", color.RGBA{G: 0xff, A: 0xff}},
		{"alpha hex", "[color=#80ff0000]x[/color]", color.RGBA{R: 0xff, A: 0x80}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Parse(tc.input)

			require.Equal(t, "x", res.Text)
			require.Empty(t, res.Warnings)
			require.Equal(t, []StyleRun{{
				Start:     0,
				End:       1,
				Kind:      KindColor,
				Inclusive: true,
				Payload:   ColorPayload{Color: tc.want},
			}}, res.Runs)
		})
	}
}

func TestParse_InvalidColor(t *testing.T) {
	for _, input := range []string{"[color=notacolor]x[/color]", "[color]x[/color]", "[color=#12]x[/color]"} {
		t.Run(input, func(t *testing.T) {
			res := Parse(input)

			require.Equal(t, "x", res.Text)
			require.Empty(t, res.Runs)
			require.Equal(t, []Issue{IssueInvalidColor}, issues(res.Warnings))
		})
	}
}

func TestParse_CrossNested(t *testing.T) {
	res := Parse("[b]bold[i]both[/b]italic[/i]")

	require.Equal(t, "boldbothitalic", res.Text)
	require.Empty(t, res.Warnings)
	require.Equal(t, []StyleRun{
		{Start: 0, End: 8, Kind: KindBold, Inclusive: true},
		{Start: 4, End: 14, Kind: KindItalic, Inclusive: true},
	}, res.Runs)
}

func TestParse_SameTypeNesting(t *testing.T) {
	res := Parse("[b]a[b]b[/b]c[/b]")

	require.Equal(t, "abc", res.Text)
	require.Equal(t, []StyleRun{
		{Start: 0, End: 3, Kind: KindBold, Inclusive: true},
		{Start: 1, End: 2, Kind: KindBold, Inclusive: true},
	}, res.Runs)
}

func TestParse_Unclosed(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		text  string
		runs  []StyleRun
	}{
		{
			name:  "single",
			input: "[b]unclosed",
			text:  "[b]unclosed",
		},
		{
			name:  "variable tag",
			input: "[color=red]x",
			text:  "[color]x",
		},
		{
			name:  "before closed tag",
			input: "[i][b]x[/b]",
			text:  "[i]x",
			runs:  []StyleRun{{Start: 0, End: 4, Kind: KindBold, Inclusive: true}},
		},
		{
			name:  "after closed tag",
			input: "[b]x[/b][i]y",
			text:  "x[i]y",
			runs:  []StyleRun{{Start: 0, End: 4, Kind: KindBold, Inclusive: true}},
		},
		{
			name:  "away from closed tag",
			input: "[b]x[/b] [i]y",
			text:  "x [i]y",
			runs:  []StyleRun{{Start: 0, End: 1, Kind: KindBold, Inclusive: true}},
		},
		{
			name:  "inside closed tag",
			input: "[b][i]x[/b]",
			text:  "[i]x",
			runs:  []StyleRun{{Start: 0, End: 4, Kind: KindBold, Inclusive: true}},
		},
		{
			name:  "reverse order",
			input: "a[b]b[i]c",
			text:  "a[b]b[i]c",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Parse(tc.input)

			require.Equal(t, tc.text, res.Text)
			if tc.runs == nil {
				require.Empty(t, res.Runs)
			} else {
				require.Equal(t, tc.runs, res.Runs)
			}
			require.Contains(t, issues(res.Warnings), IssueUnclosedTag)
		})
	}
}

func TestParse_UnclosedNextToIcon(t *testing.T) {
	type bounds struct {
		kind      StyleKind
		start     int
		end       int
		inclusive bool
	}

	testCases := []struct {
		name  string
		input string
		text  string
		want  []bounds
	}{
		{
			name:  "after icon",
			input: "[icon]a[/icon][b]",
			text:  "a[b]",
			want: []bounds{
				{KindImage, 0, 1, false},
				{KindLink, 0, 4, true},
			},
		},
		{
			name:  "before icon",
			input: "[b][icon]a[/icon]",
			text:  "[b]a",
			want: []bounds{
				{KindImage, 3, 4, false},
				{KindLink, 0, 4, true},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Parse(tc.input)

			require.Equal(t, tc.text, res.Text)
			require.Equal(t, []Issue{IssueUnclosedTag}, issues(res.Warnings))

			got := make([]bounds, 0, len(res.Runs))
			for _, r := range res.Runs {
				got = append(got, bounds{r.Kind, r.Start, r.End, r.Inclusive})
			}
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParse_UnclosedWarningsOrder(t *testing.T) {
	res := Parse("[b]a[i]b")

	require.Equal(t, "[b]a[i]b", res.Text)
	require.Len(t, res.Warnings, 2)
	require.Equal(t, "[b]", res.Warnings[0].Near)
	require.Equal(t, "[i]", res.Warnings[1].Near)
}

func TestParse_MalformedMarkup(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		text   string
		issues []Issue
		runs   int
	}{
		{"unknown tag", "[foo]bar", "[foo]bar", []Issue{IssueUnknownTag}, 0},
		{"unmatched closing tag", "[/b]x", "[/b]x", []Issue{IssueUnmatchedClosingTag}, 0},
		{"double bracket", "[[b]x[/b]", "[x", []Issue{IssueUnknownTag}, 1},
		{"no closing bracket", "a [b x", "a [b x", []Issue{}, 0},
		{"empty brackets", "[]", "[]", []Issue{IssueUnknownTag}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Parse(tc.input)

			require.Equal(t, tc.text, res.Text)
			require.Equal(t, tc.issues, issues(res.Warnings))
			require.Len(t, res.Runs, tc.runs)
		})
	}
}

func TestParse_NoParse(t *testing.T) {
	res := Parse("[noparse][b]x[/b][/noparse] [i]y[/i]")

	require.Equal(t, "[b]x[/b] y", res.Text)
	require.Empty(t, res.Warnings)
	require.Equal(t, []StyleRun{{Start: 9, End: 10, Kind: KindItalic, Inclusive: true}}, res.Runs)

	res = Parse("[noparse][b]x")

	require.Equal(t, "[b]x", res.Text)
	require.Empty(t, res.Runs)
	require.Equal(t, []Issue{IssueUnclosedNoParse}, issues(res.Warnings))
}

func TestParse_Link(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		text   string
		start  int
		end    int
		target string
	}{
		{"guess from valid text", "[url]http://example.com[/url]", "http://example.com", 0, 18, "http://example.com"},
		{"guess bare host", "[url]example.com[/url]", "example.com", 0, 11, "http://example.com"},
		{"variable", "see [url=https://a.io]this[/url]", "see this", 4, 8, "https://a.io"},
		{"empty", "[url][/url]", "[LINK]", 0, 6, EmptyLinkTarget},
		{"empty with variable", "a[url=http://x.io][/url]b", "a[LINK]b", 1, 7, "http://x.io"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Parse(tc.input)

			require.Equal(t, tc.text, res.Text)
			require.Empty(t, res.Warnings)
			require.Equal(t, []StyleRun{{
				Start:     tc.start,
				End:       tc.end,
				Kind:      KindLink,
				Inclusive: true,
				Payload:   LinkPayload{URL: tc.target},
			}}, res.Runs)
		})
	}
}

func TestParse_InvalidLink(t *testing.T) {
	res := Parse("[url]not a link[/url]")

	require.Equal(t, "not a link", res.Text)
	require.Empty(t, res.Runs)
	require.Equal(t, []Issue{IssueInvalidURL}, issues(res.Warnings))

	res = Parse("[url=javascript:alert(1)]x[/url]")

	require.Equal(t, "x", res.Text)
	require.Empty(t, res.Runs)
	require.Equal(t, []Issue{IssueInvalidURL}, issues(res.Warnings))
}

func TestParse_LinkEmptyVariable(t *testing.T) {
	// the empty variable is the target, it's not guessed from the text
	res := Parse("[url=]example.com[/url]")

	require.Equal(t, "example.com", res.Text)
	require.Empty(t, res.Runs)
	require.Equal(t, []Issue{IssueInvalidURL}, issues(res.Warnings))
}

func TestParse_LinkPlaceholderShiftsRuns(t *testing.T) {
	res := Parse("[b][url][/url][/b]")

	require.Equal(t, "[LINK]", res.Text)
	require.Equal(t, []StyleRun{
		{Start: 0, End: 6, Kind: KindBold, Inclusive: true},
		{Start: 0, End: 6, Kind: KindLink, Inclusive: true, Payload: LinkPayload{URL: EmptyLinkTarget}},
	}, res.Runs)

	res = Parse("[url][/url][b]x[/b]")

	require.Equal(t, "[LINK]x", res.Text)
	require.Equal(t, []StyleRun{
		{Start: 0, End: 6, Kind: KindLink, Inclusive: true, Payload: LinkPayload{URL: EmptyLinkTarget}},
		{Start: 6, End: 7, Kind: KindBold, Inclusive: true},
	}, res.Runs)
}

func TestParse_User(t *testing.T) {
	res := Parse("hi [user]John Doe[/user]")

	require.Equal(t, "hi John Doe", res.Text)
	require.Empty(t, res.Warnings)
	require.Equal(t, []StyleRun{
		{Start: 3, End: 11, Kind: KindUnderline, Inclusive: true},
		{Start: 3, End: 11, Kind: KindLink, Inclusive: true, Payload: LinkPayload{URL: "http://f-list.net/c/John%20Doe"}},
	}, res.Runs)
}

func TestParse_Icons(t *testing.T) {
	res := Parse("[icon]Some Name[/icon] [eicon]Wave[/eicon]")

	require.Equal(t, "Some Name Wave", res.Text)
	require.Empty(t, res.Warnings)
	require.Len(t, res.Runs, 3)

	avatar := res.Runs[0]
	require.Equal(t, 0, avatar.Start)
	require.Equal(t, 9, avatar.End)
	require.Equal(t, KindImage, avatar.Kind)
	require.False(t, avatar.Inclusive)

	img, ok := avatar.Payload.(ImagePayload)
	require.True(t, ok)
	require.Equal(t, "https://static.f-list.net/images/avatar/some%20name.png", img.URL)
	require.Equal(t, DefaultPendingGlyph, img.Placeholder.Glyph())

	require.Equal(t, StyleRun{
		Start:     0,
		End:       9,
		Kind:      KindLink,
		Inclusive: true,
		Payload:   LinkPayload{URL: "http://f-list.net/c/some%20name"},
	}, res.Runs[1])

	eicon := res.Runs[2]
	require.Equal(t, 10, eicon.Start)
	require.Equal(t, 14, eicon.End)
	require.Equal(t, "https://static.f-list.net/images/eicon/wave.png", eicon.Payload.(ImagePayload).URL)

	// without a fetcher the images stay pending for good
	ph := res.Placeholders()
	require.Len(t, ph, 2)
	require.NotEqual(t, ph[0].ID(), ph[1].ID())

	for _, p := range ph {
		require.Equal(t, StatePending, p.State())
		<-p.Done()
	}
}

func TestParse_EmptyIcon(t *testing.T) {
	res := Parse("[icon][/icon]")

	require.Equal(t, "", res.Text)
	require.Empty(t, res.Runs)
	require.Equal(t, []Issue{IssueInvalidURL}, issues(res.Warnings))
}

func TestParse_PrivateChannel(t *testing.T) {
	res := Parse("join [session=Cool Room]ADH-123[/session]!")

	require.Equal(t, "join Cool Room!", res.Text)
	require.Empty(t, res.Warnings)
	require.Equal(t, []StyleRun{{
		Start:     5,
		End:       14,
		Kind:      KindReference,
		Inclusive: true,
		Payload:   ReferencePayload{ID: "ADH-123", Display: "Cool Room"},
	}}, res.Runs)
}

func TestParse_PrivateChannelFirstOccurrence(t *testing.T) {
	// the earlier, unrelated occurrence of the identifier is the one replaced
	res := Parse("ADH-123 [session=Room]ADH-123[/session]")

	require.Equal(t, "Room ADH-123", res.Text)
	require.Equal(t, 5, res.Runs[0].Start)
	require.Equal(t, 12, res.Runs[0].End)
}

func TestParse_PrivateChannelNoDisplayName(t *testing.T) {
	res := Parse("[session]ADH-123[/session]")

	require.Equal(t, "ADH-123", res.Text)
	require.Equal(t, []StyleRun{{
		Start:     0,
		End:       7,
		Kind:      KindReference,
		Inclusive: true,
		Payload:   ReferencePayload{ID: "ADH-123"},
	}}, res.Runs)
	require.Equal(t, []Issue{IssueMissingDisplayName}, issues(res.Warnings))
}

func TestParse_PublicChannel(t *testing.T) {
	res := Parse("[channel]Frontpage[/channel]")

	require.Equal(t, "Frontpage", res.Text)
	require.Equal(t, []StyleRun{{
		Start:     0,
		End:       9,
		Kind:      KindReference,
		Inclusive: true,
		Payload:   ReferencePayload{ID: "Frontpage"},
	}}, res.Runs)
}

func TestParse_Entities(t *testing.T) {
	res := Parse("&lt;3 &amp; [b]x[/b]\nbye")

	require.Equal(t, "<3 & x\nbye", res.Text)
	require.Equal(t, []StyleRun{{Start: 5, End: 6, Kind: KindBold, Inclusive: true}}, res.Runs)

	// escaped brackets are markup once decoded
	res = Parse("&#91;b&#93;x&#91;/b&#93;")

	require.Equal(t, "x", res.Text)
	require.Len(t, res.Runs, 1)
}

func TestParse_RuneOffsets(t *testing.T) {
	res := Parse("ñ [b]héllo[/b] wörld")

	require.Equal(t, "ñ héllo wörld", res.Text)
	require.Equal(t, []StyleRun{{Start: 2, End: 7, Kind: KindBold, Inclusive: true}}, res.Runs)
}

func TestParse_Idempotent(t *testing.T) {
	first := Parse("[b]plain[/b] and [i]simple[/i]")
	second := Parse(first.Text)

	require.Equal(t, first.Text, second.Text)
	require.Empty(t, second.Runs)
	require.Empty(t, second.Warnings)
}

func TestParse_RunsWithinText(t *testing.T) {
	inputs := []string{
		"[b]a[i]b[u]c[/u]d[/i]e[/b]",
		"[b][url][/url][/b][url][/url]",
		"[session=Long Display Name]x[/session] [b]y",
		"[i][b][/b][color=red][/i]z[/color]",
		"[sup][sub][s][/sup][/sub]",
		"[eicon]a[/eicon][icon]b[/icon][user]c[/user]",
		"[noparse][b][/noparse][/b]",
		"[u]&amp;[/u][b]",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			res := Parse(input)
			n := utf8.RuneCountInString(res.Text)

			for _, r := range res.Runs {
				require.GreaterOrEqual(t, r.Start, 0)
				require.LessOrEqual(t, r.Start, r.End)
				require.LessOrEqual(t, r.End, n)
			}
		})
	}
}

func TestParser_Options(t *testing.T) {
	p := NewParser(
		WithLinks(Links{
			ProfileBase: "https://example.com/u/",
			AvatarBase:  "https://img.example.com/a/",
			EiconBase:   "https://img.example.com/e/",
		}),
		WithLinkPlaceholder("<link>"),
		WithPendingGlyph("spinner"),
		WithStripHTML(true),
	)

	res := p.Parse(context.Background(), "<p>[url][/url] [icon]Bob[/icon]</p>")

	require.Equal(t, "<link> Bob", res.Text)
	require.Len(t, res.Runs, 3)

	img := res.Runs[1].Payload.(ImagePayload)
	require.Equal(t, "https://img.example.com/a/bob.png", img.URL)
	require.Equal(t, "spinner", img.Placeholder.Glyph())
	require.Equal(t, LinkPayload{URL: "https://example.com/u/bob"}, res.Runs[2].Payload)
}
