package lesson

import "github.com/ByLCY/tracepad/layout"

// SheetWords converts the current entries for the printable sheet.
func (l *Lesson) SheetWords() []layout.SheetWord {
	entries := l.Entries()
	out := make([]layout.SheetWord, len(entries))
	for i, e := range entries {
		out[i] = layout.SheetWord{Word: e.Word.Word, Translation: e.Translation}
		if e.Image != nil {
			out[i].Image = e.Image.Data
		}
	}
	return out
}

// Sheet lays out the printable practice sheet for the lesson.
func (l *Lesson) Sheet(opts layout.SheetOptions) (*layout.Sheet, error) {
	if opts.Meta.Title == "" {
		opts.Meta.Title = l.LetterPrompt()
	}
	return layout.BuildSheet(l.letter, l.SheetWords(), opts)
}
