// Package activity bounds how much raw note/interaction history is forwarded
// to the summarization step.
package activity

import (
	"regexp"
	"strings"

	"outreach/internal/domain"
)

// Channels kept by the personal-outreach filter, after normalization strips
// case, spaces, and dashes.
var personalChannels = map[string]struct{}{
	"phone":       {},
	"phonecall":   {},
	"email":       {},
	"text":        {},
	"textmessage": {},
	"inperson":    {},
}

// Mass-communication channels rejected outright.
var massChannels = map[string]struct{}{
	"massemail":  {},
	"newsletter": {},
	"mailmerge":  {},
	"bulkmail":   {},
}

// personalContactPattern rescues "Other"-channel interactions whose note text
// clearly describes a one-on-one touchpoint.
var personalContactPattern = regexp.MustCompile(
	`(?i)\b(call(?:ed|s)?|text(?:ed|s)?|email(?:ed|s)?|met|meeting|visit(?:ed|s)?|spoke|talk(?:ed|s)?|follow[ -]?up)\b`)

// FilterPersonal keeps only interactions on personal outreach channels.
// Unknown and "other" channels survive only when their note text matches the
// personal-contact keywords; mass channels never do.
func FilterPersonal(items []domain.Interaction) []domain.Interaction {
	var out []domain.Interaction
	for _, item := range items {
		channel := normalizeChannel(item.Channel)
		if _, rejected := massChannels[channel]; rejected {
			continue
		}
		if _, ok := personalChannels[channel]; ok {
			out = append(out, item)
			continue
		}
		if personalContactPattern.MatchString(item.Text) {
			out = append(out, item)
		}
	}
	return out
}

func normalizeChannel(channel string) string {
	channel = strings.ToLower(strings.TrimSpace(channel))
	channel = strings.ReplaceAll(channel, " ", "")
	channel = strings.ReplaceAll(channel, "-", "")
	channel = strings.ReplaceAll(channel, "_", "")
	return channel
}
