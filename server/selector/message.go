package selector

import (
	"fmt"
	"strings"
)

// The message table is data, not logic: one template per selection reason,
// with the default reason varied by time bucket. Placeholders are filled
// with the companion display name and pool counts.
var reasonTemplates = map[string]string{
	reasonMorningHighFatigue: "%[1]s noticed you're running low this morning. Here are %[2]d tiny wins to ease into the day.",
	reasonAfternoonHighJoy:   "You're on a roll! %[1]s picked %[2]d tasks to keep the momentum going.",
	reasonHighCognitiveLoad:  "Things feel heavy right now. %[1]s found the %[2]d tasks that unblock the most, including %[3]d overdue.",
	reasonLocationPrefix:     "While you're out, %[1]s spotted %[2]d tasks close to where you are.",
}

var defaultTemplates = map[string]string{
	timeMorning:        "Good morning! %[1]s lined up %[2]d tasks to get today moving.",
	timeEarlyAfternoon: "%[1]s has %[2]d tasks queued for your afternoon.",
	timeLateAfternoon:  "The day is winding down. %[1]s suggests %[2]d tasks worth finishing.",
	timeEvening:        "Evening check-in: %[1]s kept it to %[2]d tasks so you can wrap up gently.",
	timeOther:          "%[1]s found %[2]d tasks whenever you're ready.",
}

const emptyTemplate = "Nothing urgent right now. %[1]s says enjoy the breathing room."

type messageInput struct {
	reason        string
	timeOfDay     string
	companionName string
	suggested     int
	tinyCount     int
	overdueCount  int
}

func composeMessage(in messageInput) string {
	if in.suggested == 0 {
		return fmt.Sprintf(emptyTemplate, in.companionName)
	}

	switch {
	case in.reason == reasonMorningHighFatigue:
		return fmt.Sprintf(reasonTemplates[reasonMorningHighFatigue], in.companionName, in.tinyCount)
	case in.reason == reasonAfternoonHighJoy:
		return fmt.Sprintf(reasonTemplates[reasonAfternoonHighJoy], in.companionName, in.suggested)
	case in.reason == reasonHighCognitiveLoad:
		return fmt.Sprintf(reasonTemplates[reasonHighCognitiveLoad], in.companionName, in.suggested, in.overdueCount)
	case strings.HasPrefix(in.reason, reasonLocationPrefix):
		return fmt.Sprintf(reasonTemplates[reasonLocationPrefix], in.companionName, in.suggested)
	default:
		template, ok := defaultTemplates[in.timeOfDay]
		if !ok {
			template = defaultTemplates[timeOther]
		}
		return fmt.Sprintf(template, in.companionName, in.suggested)
	}
}
