package lexer

import (
	"bibadac/internal/diag"
	"bibadac/internal/source"
)

// Reporter is the thin contract the lexer uses to surface malformations
// without depending on diagnostic storage. Every Invalid token the lexer
// emits is accompanied by exactly one Report call.
type Reporter interface {
	Report(code diag.Code, span source.Span, msg string)
}

// DefaultMaxDepth is the documented brace-nesting limit. Braces beyond this
// depth produce an Invalid token (and a LexDepthExceeded report) but lexing
// continues and the depth counter stays balanced.
const DefaultMaxDepth = 64

// Options configures a Lexer.
type Options struct {
	// Reporter may be nil; malformations still produce Invalid tokens.
	Reporter Reporter
	// MaxDepth overrides DefaultMaxDepth when positive.
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return DefaultMaxDepth
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, sp, msg)
	}
}
