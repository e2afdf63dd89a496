package prd

import (
	"context"

	prdSvc "redspec/internal/domain/services/prd"
	"redspec/internal/protocol"
	"redspec/internal/templates"
)

// GetDocumentView builds the tabbed viewer model: one tab per section in
// assembly order, the template sections still missing and the title-only flag.
func (s *documentService) GetDocumentView(ctx context.Context, id string) (*prdSvc.DocumentView, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	tmpl, err := s.registry.Get(doc.Template)
	if err != nil {
		s.logger.Debug("prd template not registered", "id", doc.ID, "template", doc.Template)
		tmpl = nil
	}

	view := &prdSvc.DocumentView{
		Document:  doc,
		Sections:  make([]prdSvc.SectionView, 0, doc.Sections.Len()),
		Template:  tmpl,
		Missing:   []string{},
		TitleOnly: doc.IsTitleOnly(),
	}

	for _, key := range protocol.OrderedKeys(doc.Sections) {
		body, _ := doc.Sections.Get(key)
		words := s.analyzer.CountWords(body)
		view.Sections = append(view.Sections, prdSvc.SectionView{
			Key:       key,
			Title:     sectionTitle(tmpl, key),
			Body:      body,
			WordCount: words,
			Planned:   tmpl != nil && tmpl.Section(key) != nil,
		})
		view.WordCount += words
	}
	if !doc.HasSections() {
		view.WordCount = s.analyzer.CountWords(doc.Content)
	}

	if tmpl != nil {
		view.Missing = templates.MissingSections(tmpl, doc.Sections)
		view.Progress = templates.Progress(tmpl, doc.Sections)
	}

	return view, nil
}

// sectionTitle prefers the template's display title for a key
func sectionTitle(tmpl *templates.Template, key string) string {
	if tmpl != nil {
		if plan := tmpl.Section(key); plan != nil && plan.Title != "" {
			return plan.Title
		}
	}
	return protocol.SectionTitle(key)
}
