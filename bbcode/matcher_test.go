package bbcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustTag(t *testing.T, code string) Tag {
	t.Helper()
	tag, ok := Lookup(code)
	require.True(t, ok, "tag %q is not in the catalog", code)
	return tag
}

func TestCatalog(t *testing.T) {
	codes := []string{
		CodeBold, CodeItalic, CodeUnderline, CodeStrikethrough, CodeSuperscript, CodeSubscript,
		CodeColor, CodeNoParse, CodeIcon, CodeEicon, CodeURL, CodeUser, CodePrivateChannel, CodePublicChannel,
	}

	cat := Catalog()
	require.Len(t, cat, len(codes))

	for i, code := range codes {
		require.Equal(t, code, cat[i].Code)
	}

	// the copy must not leak into the table
	cat[0].Code = "x"
	require.Equal(t, CodeBold, Catalog()[0].Code)

	_, ok := Lookup("quote")
	require.False(t, ok)
}

func TestCatalog_VariableTagsComeLast(t *testing.T) {
	cat := Catalog()

	for i, tag := range cat {
		if tag.Matcher != MatchVariable {
			continue
		}

		// a later tag sharing the prefix would never be reached
		for _, later := range cat[i+1:] {
			require.False(t, strings.HasPrefix(later.Code, tag.Code),
				"%q is shadowed by the variable tag %q", later.Code, tag.Code)
		}
	}

	res := Parse("[colorx=red]a[/color]")
	require.Equal(t, "a", res.Text)
	require.Len(t, res.Runs, 1)
	require.Equal(t, KindColor, res.Runs[0].Kind)
}

func TestIsStart(t *testing.T) {
	testCases := []struct {
		name  string
		token string
		code  string
		want  bool
	}{
		{"exact", "[b]", CodeBold, true},
		{"exact with variable", "[b=x]", CodeBold, false},
		{"closing token", "[/b]", CodeBold, false},
		{"variable without value", "[color]", CodeColor, true},
		{"variable with value", "[color=red]", CodeColor, true},
		{"variable prefix only", "[colorful]", CodeColor, true},
		{"other exact tag", "[sub]", CodeStrikethrough, false},
		{"url is not underline", "[url]", CodeUnderline, false},
		{"missing bracket", "[color=red", CodeColor, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsStart(tc.token, mustTag(t, tc.code)))
		})
	}
}

func TestIsEnd(t *testing.T) {
	require.True(t, IsEnd("[/b]", mustTag(t, CodeBold)))
	require.True(t, IsEnd("[/color]", mustTag(t, CodeColor)))
	require.False(t, IsEnd("[/color=red]", mustTag(t, CodeColor)))
	require.False(t, IsEnd("[b]", mustTag(t, CodeBold)))
}

func TestVariable(t *testing.T) {
	testCases := []struct {
		name   string
		token  string
		code   string
		want   string
		wantOK bool
	}{
		{"color", "[color=red]", CodeColor, "red", true},
		{"no value", "[color]", CodeColor, "", false},
		{"empty value", "[color=]", CodeColor, "", true},
		{"first equals sign", "[url=http://a.io/?x=1]", CodeURL, "http://a.io/?x=1", true},
		{"exact tag", "[b]", CodeBold, "", false},
		{"not a start token", "[/url]", CodeURL, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := Variable(tc.token, mustTag(t, tc.code))
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.want, v)
		})
	}
}
