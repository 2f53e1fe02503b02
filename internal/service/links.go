package service

import "eventportal/internal/model"

var knownLinkLabels = []string{
	model.LinkTypeInformation,
	model.LinkTypeDocument,
	model.LinkTypeAdvertising,
}

// ClassifyLinks groups links by type label. Information, Document and
// Advertising come first, any other label follows in order of first
// appearance. Links keep their relative order and empty groups are left
// out.
func ClassifyLinks(links []model.TicketLink) []model.LinkGroup {
	byLabel := make(map[string][]model.TicketLink)
	var extra []string

	for _, link := range links {
		label := link.TypeLabel
		if label == "" {
			label = model.LinkTypeOther
		}
		if _, seen := byLabel[label]; !seen && !isKnownLabel(label) {
			extra = append(extra, label)
		}
		byLabel[label] = append(byLabel[label], link)
	}

	groups := make([]model.LinkGroup, 0, len(byLabel))
	for _, label := range append(append([]string{}, knownLinkLabels...), extra...) {
		if members := byLabel[label]; len(members) > 0 {
			groups = append(groups, model.LinkGroup{Label: label, Links: members})
		}
	}
	return groups
}

func isKnownLabel(label string) bool {
	for _, known := range knownLinkLabels {
		if label == known {
			return true
		}
	}
	return false
}
