// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// =============================================================================
// FENCED CODE BLOCKS
// =============================================================================

// renderCodeBlock renders the body of one fenced block as a bordered box
// with a language badge and syntax highlighting. An unclosed fence passes
// through here too: whatever code has arrived so far is rendered, and the
// next frame simply renders the longer body again.
func (r *Renderer) renderCodeBlock(language string, codeLines []string, width int) []string {
	code := strings.Join(codeLines, "\n")

	highlighted := highlight(code, language, r.theme.ChromaStyle)
	body := strings.Split(highlighted, "\n")

	if r.theme.LineNumbers {
		for i, line := range body {
			body[i] = r.theme.CodeLineNum.Render(strconv.Itoa(i+1)) + line
		}
	}

	var content string
	if language != "" {
		content = r.theme.CodeBadge.Render(language) + "\n"
	}
	content += strings.Join(body, "\n")

	boxWidth := width
	if boxWidth < minContentWidth {
		boxWidth = minContentWidth
	}

	block := r.theme.CodeBlock.MaxWidth(boxWidth).Render(content)
	return strings.Split(block, "\n")
}

// highlight applies ANSI syntax highlighting via chroma, falling back to
// the raw code when the language is unknown or tokenization fails.
func highlight(code, language, styleName string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}

	// chroma appends a trailing newline the fence body never had.
	return strings.TrimSuffix(buf.String(), "\n")
}
