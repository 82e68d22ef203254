package petrichor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ichor-news/backend/internal/llm"
	"github.com/ichor-news/backend/internal/models"
)

// PreferenceReader is the slice of the preference store the agent needs.
type PreferenceReader interface {
	Get(ctx context.Context, user string) (models.Preference, error)
}

// Agent wraps the language model with the Petrichor persona and the
// per-user tone handling. All operations are best-effort: a model failure
// degrades to a deterministic fallback and is logged, never propagated.
type Agent struct {
	llm     llm.Client
	prefs   PreferenceReader
	log     *slog.Logger
	timeout time.Duration
}

// New builds an agent. timeout bounds every outbound model call.
func New(client llm.Client, prefs PreferenceReader, log *slog.Logger, timeout time.Duration) *Agent {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Agent{llm: client, prefs: prefs, log: log, timeout: timeout}
}

// Summarize turns a raw article into a TITLE/HOOK/SUMMARY post shaped for
// the user's stored tone. The returned text is opaque; callers do not parse
// the labeled fields back out. On any model failure the article itself is
// the summary: title, blank line, description.
func (a *Agent) Summarize(ctx context.Context, article models.Article, user string) string {
	directive := a.directiveFor(ctx, user)
	prompt := fmt.Sprintf(summarizeTemplate, directive, article.Title, article.Description)

	out, err := a.complete(ctx, prompt)
	if err != nil {
		a.log.Warn("summarize failed, using article text",
			slog.String("title", article.Title),
			slog.Any("err", err),
		)
		return article.Title + "\n\n" + article.Description
	}
	return out
}

// Expand rewrites a short summary as a full article. Failures return a
// fixed placeholder rather than failing the request.
func (a *Agent) Expand(ctx context.Context, content string) string {
	out, err := a.complete(ctx, fmt.Sprintf(expandTemplate, content))
	if err != nil {
		a.log.Warn("expand failed", slog.Any("err", err))
		return expandFallback
	}
	return out
}

// RewriteForBias re-tones an existing summary toward the given label.
// Unknown bias is a passthrough with no model call; failures fall back to
// the input unchanged.
func (a *Agent) RewriteForBias(ctx context.Context, summary string, bias models.Bias) string {
	directive, ok := rewriteDirectives[bias]
	if !ok {
		return summary
	}

	out, err := a.complete(ctx, directive+"\n\n"+summary)
	if err != nil {
		a.log.Warn("bias rewrite failed, keeping original",
			slog.String("bias", string(bias)),
			slog.Any("err", err),
		)
		return summary
	}
	return out
}

// ExplainBias names the political slant of a piece of content.
func (a *Agent) ExplainBias(ctx context.Context, content string) string {
	out, err := a.complete(ctx, fmt.Sprintf(explainTemplate, content))
	if err != nil {
		a.log.Warn("bias explainer failed", slog.Any("err", err))
		return explainFallback
	}
	return out
}

// Chat answers a free-form prompt, honoring any stored style guidance.
func (a *Agent) Chat(ctx context.Context, user, prompt string) string {
	system := systemPrompt
	if pref, err := a.prefs.Get(ctx, user); err == nil && pref.Style != "" {
		system += " The user has asked for this style: " + pref.Style
	} else if err != nil {
		a.log.Warn("preference lookup failed, chatting without style", slog.Any("err", err))
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	out, err := a.llm.Complete(ctx, system, prompt)
	if err != nil {
		a.log.Warn("chat failed", slog.Any("err", err))
		return chatFallback
	}
	return out
}

// directiveFor composes the tone block for the summarize prompt from the
// user's stored preference. An absent or unreadable preference is neutral,
// never an error.
func (a *Agent) directiveFor(ctx context.Context, user string) string {
	pref, err := a.prefs.Get(ctx, user)
	if err != nil {
		a.log.Warn("preference lookup failed, using neutral tone",
			slog.String("user", user),
			slog.Any("err", err),
		)
		pref = models.Preference{}
	}

	lines := make([]string, 0, 2)
	if tone, ok := toneDirectives[pref.Bias]; ok {
		lines = append(lines, tone)
	}
	if pref.Style != "" {
		lines = append(lines, "Style guidance from the reader: "+pref.Style)
	}
	if len(lines) == 0 {
		lines = append(lines, neutralDirective)
	}

	return "TONE: " + strings.Join(lines, " ")
}

func (a *Agent) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.llm.Complete(ctx, systemPrompt, prompt)
}
