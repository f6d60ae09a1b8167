package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/noah-isme/admissions-crm-api/internal/models"
)

// Intent names reported with every chat reply.
const (
	IntentGreeting         = "greeting"
	IntentHelp             = "help"
	IntentAcknowledgment   = "acknowledgment"
	IntentClosing          = "closing"
	IntentTime             = "time"
	IntentContextualUpdate = "contextual_update"
	IntentRefinement       = "refinement"
	IntentScrape           = "scrape"
	IntentOffTopic         = "off_topic"
	IntentNews             = "news"
	IntentGeneral          = "general"
)

// Canned replies.
const (
	GreetingReply = "Hello! I'm the admissions assistant. I can help with course information, admission steps, and summarizing college web pages. What would you like to know?"

	HelpReply = "I can help you with:\n" +
		"- Course details, eligibility, and admission steps\n" +
		"- Summarizing a college or university web page (just paste the link)\n" +
		"- Checking a page you shared earlier for updates or announcements\n" +
		"- Shortening or expanding my previous answer\n" +
		"- Telling you the current time\n" +
		"Ask me anything about admissions to get started."

	HelpRedirectReply = "As mentioned above, I can help with courses, admissions, and college web pages. Try asking about a course or paste a college website link."

	RefusalReply = "I'm sorry, I have limited tools and can only help with academic, admissions, and course-related questions. Would you like to know what I can help with?"

	ClosingReply = "Alright! Best of luck with your admissions journey. Feel free to come back anytime."

	NoContextReply = "I couldn't analyze updates because no website has been scraped in this conversation yet. Please share the site's link first."

	UpstreamFallbackReply = "Sorry, I'm having trouble reaching the assistant service right now. Please try again shortly."

	NoNewsReply = "I couldn't find recent news about that. Try asking about a specific college or exam."

	couldNotRetrieveFormat = "Sorry, I could not retrieve content from %s. The page may be unavailable or blocking automated access."

	acknowledgmentPrefix  = "You're welcome!"
	acknowledgmentFormat  = acknowledgmentPrefix + " Is there anything else you'd like to know about %s?"
	acknowledgmentGeneric = acknowledgmentPrefix + " Is there anything else I can help you with?"
)

// minRefinableLength is the shortest prior answer worth rewriting.
const minRefinableLength = 200

var (
	greetings = setOf("hi", "hello", "hey", "hii", "hey there", "hello there", "hi there",
		"good morning", "good afternoon", "good evening", "namaste")

	helpPhrases = []string{"help", "what can you do", "who are you", "introduce yourself",
		"how can you help", "what do you do", "your capabilities", "what are your features"}

	affirmatives = setOf("yes", "yeah", "yep", "sure", "ok", "okay", "yes please", "tell me",
		"go ahead", "please do")

	acknowledgments = setOf("ok", "okay", "thanks", "thank you", "thx", "got it", "cool", "great",
		"alright", "nice", "thanks a lot", "understood", "ok thanks", "okay thanks")

	closings = setOf("no", "nope", "no thanks", "no thank you", "nothing", "nothing else",
		"that's all", "thats all", "that is all", "bye", "goodbye")

	timeQualifiers = []string{"current", "what is", "what's", "now", "update"}

	updateKeywords = []string{"update", "updates", "latest", "news", "announcement",
		"announcements", "recent", "new"}

	siteReferences = []string{"this site", "this website", "the site", "the website", "that site",
		"that website", "this page", "the page", "above"}

	backReferences = append([]string{"the college", "this college"}, siteReferences...)

	refineKeywords = []string{"shorten", "shorter", "summarize", "summarise", "elaborate",
		"explain more", "in detail", "extract", "bullet points", "simplify", "make it brief", "tl;dr"}

	refineReferences = []string{"above", "previous", "that", "this", "it", "your answer", "last reply"}

	newsKeywords = []string{"news", "headlines"}

	urlPattern = regexp.MustCompile(`(?i)\bhttps?://[^\s<>"']+|\bwww\.[^\s<>"']+`)

	offTopicPattern = regexp.MustCompile(`(?i)\b(weather|forecast|dating|date me|girlfriend|boyfriend|recipes?|cooking|jokes?|movies?|songs?|celebrit(y|ies)|netflix|entertainment|cricket score|what are you)\b`)

	nonWord = regexp.MustCompile(`[^a-z0-9';]+`)
)

func setOf(items ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, item := range items {
		out[item] = struct{}{}
	}
	return out
}

// normalizeUtterance lower-cases, collapses whitespace and strips trailing punctuation.
func normalizeUtterance(text string) string {
	text = strings.ToLower(strings.Join(strings.Fields(text), " "))
	return strings.TrimRight(text, "!?.,;: ")
}

// hasPhrase matches phrase on word boundaries.
func hasPhrase(text, phrase string) bool {
	words := " " + strings.TrimSpace(nonWord.ReplaceAllString(text, " ")) + " "
	return strings.Contains(words, " "+phrase+" ")
}

func hasAnyPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if hasPhrase(text, p) {
			return true
		}
	}
	return false
}

func isGreeting(utterance string) bool {
	_, ok := greetings[utterance]
	return ok
}

// isHelpRequest matches a help phrase, or an affirmative answer to the refusal
// disclaimer offering to describe capabilities.
func isHelpRequest(utterance, prevAssistant string) bool {
	if prevAssistant == RefusalReply {
		if _, ok := affirmatives[utterance]; ok {
			return true
		}
	}
	return hasAnyPhrase(utterance, helpPhrases)
}

// isRepeatedHelp reports a help request identical to the one just answered.
func isRepeatedHelp(utterance, prevAssistant, prevUser string) bool {
	return prevAssistant == HelpReply && normalizeUtterance(prevUser) == utterance
}

func isAcknowledgment(utterance string) bool {
	_, ok := acknowledgments[utterance]
	return ok
}

func isClosing(utterance string) bool {
	_, ok := closings[utterance]
	return ok
}

func isTimeQuery(utterance string) bool {
	if !hasPhrase(utterance, "time") {
		return false
	}
	return hasAnyPhrase(utterance, timeQualifiers)
}

func isContextualUpdate(utterance string) bool {
	return hasAnyPhrase(utterance, updateKeywords) && hasAnyPhrase(utterance, backReferences)
}

// refersToSite reports an explicit pointer back at a web page.
func refersToSite(utterance string) bool {
	return hasAnyPhrase(utterance, siteReferences)
}

// isRefinement needs a refine verb, a reference to the prior answer, a prior answer
// long enough to rework, and no new link to follow.
func isRefinement(utterance, prevAssistant string) bool {
	if len(prevAssistant) < minRefinableLength || urlPattern.MatchString(utterance) {
		return false
	}
	return hasAnyPhrase(utterance, refineKeywords) && hasAnyPhrase(utterance, refineReferences)
}

// scrapeTarget returns the explicit target, else the first link in the text.
func scrapeTarget(explicit, text string) string {
	if target := strings.TrimSpace(explicit); target != "" {
		return withScheme(target)
	}
	match := urlPattern.FindString(text)
	if match == "" {
		return ""
	}
	return withScheme(strings.TrimRight(match, ".,;:!?)]}"))
}

func withScheme(target string) string {
	lower := strings.ToLower(target)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return target
	}
	return "https://" + target
}

func isOffTopic(utterance string) bool {
	return offTopicPattern.MatchString(utterance)
}

func isNewsQuery(utterance string) bool {
	return hasAnyPhrase(utterance, newsKeywords)
}

// newsQuery strips filler words so the search runs on the subject.
func newsQuery(utterance string) string {
	filler := setOf("news", "headlines", "latest", "recent", "any", "about", "on", "the", "for",
		"of", "what", "is", "are", "show", "me", "give", "tell", "please", "some", "today's", "todays")
	var kept []string
	for _, w := range strings.Fields(nonWord.ReplaceAllString(utterance, " ")) {
		if _, skip := filler[w]; !skip {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return "college admissions"
	}
	return strings.Join(kept, " ")
}

// isDisclaimer reports canned replies that carry no topic of their own.
func isDisclaimer(content string) bool {
	switch content {
	case RefusalReply, HelpRedirectReply, GreetingReply, ClosingReply, NoContextReply, UpstreamFallbackReply:
		return true
	}
	return strings.HasPrefix(content, acknowledgmentPrefix) || strings.HasPrefix(content, "Sorry, I could not retrieve content")
}

// contextPhrase names what an earlier assistant reply was about.
func contextPhrase(content string) string {
	lower := strings.ToLower(content)
	switch {
	case content == HelpReply:
		return "what I can do"
	case strings.Contains(lower, "http") || strings.Contains(lower, "website") || strings.Contains(lower, "web page") || strings.Contains(lower, "page"):
		return "the website summary"
	case strings.Contains(lower, "update") || strings.Contains(lower, "announcement"):
		return "the updates analysis"
	case strings.Contains(lower, "time"):
		return "the time"
	default:
		return "that topic"
	}
}

// lastMessages returns the latest assistant reply and the user message before it,
// excluding the final utterance.
func lastMessages(transcript []models.ChatMessage) (prevAssistant, prevUser string) {
	if len(transcript) < 2 {
		return "", ""
	}
	history := transcript[:len(transcript)-1]
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != models.ChatRoleAssistant {
			continue
		}
		prevAssistant = history[i].Content
		for j := i - 1; j >= 0; j-- {
			if history[j].Role == models.ChatRoleUser {
				prevUser = history[j].Content
				break
			}
		}
		break
	}
	return prevAssistant, prevUser
}

// immediatePrevAssistant returns the message right before the utterance when it is
// an assistant turn.
func immediatePrevAssistant(transcript []models.ChatMessage) string {
	if len(transcript) < 2 {
		return ""
	}
	prev := transcript[len(transcript)-2]
	if prev.Role != models.ChatRoleAssistant {
		return ""
	}
	return prev.Content
}

// acknowledgmentReply builds the "anything else about X" reply from the most recent
// informative assistant message.
func acknowledgmentReply(transcript []models.ChatMessage) string {
	for i := len(transcript) - 2; i >= 0; i-- {
		msg := transcript[i]
		if msg.Role != models.ChatRoleAssistant || isDisclaimer(msg.Content) {
			continue
		}
		return fmt.Sprintf(acknowledgmentFormat, contextPhrase(msg.Content))
	}
	return acknowledgmentGeneric
}
