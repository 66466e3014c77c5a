// Package text produces the typing passage for a race.
//
// Two providers are available: GeminiClient calls the Gemini generateContent
// API directly, and RemoteProvider delegates to an HTTP endpoint returning
// {"text": string}. Both apply a bounded timeout, never retry, and run raw
// output through StripMarkdown so the passage is a single plain-text line.
package text
