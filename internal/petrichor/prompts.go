package petrichor

import "github.com/ichor-news/backend/internal/models"

// systemPrompt is the fixed persona every Petrichor call runs under.
const systemPrompt = "You are Petrichor, a helpful and unbiased political news assistant."

const summarizeTemplate = `Format this into a social-media style post.
Only return:
TITLE
HOOK
SUMMARY

%s
ARTICLE:
%s
%s
`

const expandTemplate = `Rewrite this summary as a full news article with several paragraphs. Keep the facts intact and do not invent quotes or sources.

SUMMARY:
%s
`

const explainTemplate = `Explain what political bias, if any, is present in the following content. Name the leaning, point at the wording that signals it, and keep the explanation short and plain.

CONTENT:
%s
`

// expandFallback is returned verbatim when the expansion call fails.
const expandFallback = "Error expanding article"

// explainFallback is returned verbatim when the bias explainer call fails.
const explainFallback = "Bias analysis is unavailable right now."

// chatFallback is returned verbatim when a chat completion fails.
const chatFallback = "Petrichor is having trouble responding right now. Please try again in a moment."

var rewriteDirectives = map[models.Bias]string{
	models.BiasLeft:   "Rewrite this summary from a progressive or left-leaning tone.",
	models.BiasRight:  "Rewrite this summary from a conservative or right-leaning tone.",
	models.BiasCenter: "Keep the summary neutral and objective.",
}

var toneDirectives = map[models.Bias]string{
	models.BiasLeft:   "The reader leans progressive; frame the post with that audience in mind without distorting facts.",
	models.BiasRight:  "The reader leans conservative; frame the post with that audience in mind without distorting facts.",
	models.BiasCenter: "The reader prefers neutral coverage; keep the post balanced and objective.",
}

// neutralDirective applies when no preference is stored for the user.
const neutralDirective = "Keep the tone neutral and objective."
