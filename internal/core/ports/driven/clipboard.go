package driven

// Clipboard writes exported Markdown to the system clipboard.
type Clipboard interface {
	WriteText(text string) error
}
