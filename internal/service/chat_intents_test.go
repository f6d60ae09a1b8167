package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/admissions-crm-api/internal/models"
)

func TestNormalizeUtterance(t *testing.T) {
	assert.Equal(t, "hi", normalizeUtterance("  Hi!! "))
	assert.Equal(t, "good morning", normalizeUtterance("Good\tmorning."))
}

func TestIsGreeting(t *testing.T) {
	for _, in := range []string{"hi", "hello", "good morning", "hey there"} {
		assert.True(t, isGreeting(in), in)
	}
	for _, in := range []string{"hi, what courses do you offer", "hello world program", "history"} {
		assert.False(t, isGreeting(normalizeUtterance(in)), in)
	}
}

func TestIsHelpRequest(t *testing.T) {
	assert.True(t, isHelpRequest("what can you do", ""))
	assert.True(t, isHelpRequest("can you help me", ""))
	assert.True(t, isHelpRequest("yes", RefusalReply))
	assert.False(t, isHelpRequest("yes", "Some other answer"))
	assert.False(t, isHelpRequest("what are your fees", ""))
}

func TestIsRepeatedHelp(t *testing.T) {
	assert.True(t, isRepeatedHelp("what can you do", HelpReply, "What can you do?"))
	assert.False(t, isRepeatedHelp("what can you do", HelpReply, "help"))
	assert.False(t, isRepeatedHelp("what can you do", "other", "what can you do"))
}

func TestAcknowledgmentAndClosing(t *testing.T) {
	assert.True(t, isAcknowledgment("thanks"))
	assert.True(t, isAcknowledgment("got it"))
	assert.False(t, isAcknowledgment("thanks, what about fees"))
	assert.True(t, isClosing("nothing else"))
	assert.True(t, isClosing("no"))
	assert.False(t, isClosing("no idea what to pick"))
}

func TestIsTimeQuery(t *testing.T) {
	assert.True(t, isTimeQuery("what is the time"))
	assert.True(t, isTimeQuery("what's the time now"))
	assert.True(t, isTimeQuery("current time please"))
	assert.False(t, isTimeQuery("is the course full time"))
	assert.False(t, isTimeQuery("timetable for now"))
}

func TestIsContextualUpdate(t *testing.T) {
	assert.True(t, isContextualUpdate("any updates on this site"))
	assert.True(t, isContextualUpdate("anything new from the college"))
	assert.False(t, isContextualUpdate("any updates"))
	assert.False(t, isContextualUpdate("tell me about this site"))
}

func TestRefersToSite(t *testing.T) {
	assert.True(t, refersToSite("any updates on this site"))
	assert.True(t, refersToSite("anything new above"))
	assert.False(t, refersToSite("anything new from the college"))
	assert.False(t, refersToSite("i am new here"))
}

func TestIsRefinement(t *testing.T) {
	long := strings.Repeat("The programme covers many subjects. ", 10)
	assert.True(t, isRefinement("shorten the above", long))
	assert.True(t, isRefinement("can you summarize that", long))
	assert.False(t, isRefinement("shorten the above", "short answer"))
	assert.False(t, isRefinement("summarize this https://example.edu", long))
	assert.False(t, isRefinement("what about fees", long))
}

func TestScrapeTarget(t *testing.T) {
	assert.Equal(t, "https://example.edu/admissions", scrapeTarget("", "see https://example.edu/admissions."))
	assert.Equal(t, "https://www.college.ac.in", scrapeTarget("", "check www.college.ac.in"))
	assert.Equal(t, "https://explicit.edu", scrapeTarget("explicit.edu", "https://ignored.edu"))
	assert.Equal(t, "", scrapeTarget("", "no link here"))
}

func TestIsOffTopic(t *testing.T) {
	for _, in := range []string{"tell me a joke", "what's the weather like", "any good movies", "what are you"} {
		assert.True(t, isOffTopic(in), in)
	}
	for _, in := range []string{"what are your admission criteria", "game development course", "update on admissions"} {
		assert.False(t, isOffTopic(in), in)
	}
}

func TestNewsQuery(t *testing.T) {
	assert.Equal(t, "engineering admissions", newsQuery("latest news about engineering admissions"))
	assert.Equal(t, "college admissions", newsQuery("news"))
	assert.True(t, isNewsQuery("show me headlines"))
}

func TestAcknowledgmentReplyUsesContext(t *testing.T) {
	transcript := []models.ChatMessage{
		{Role: models.ChatRoleUser, Content: "https://example.edu"},
		{Role: models.ChatRoleAssistant, Content: "Here is a summary of the website: admissions open in May."},
		{Role: models.ChatRoleUser, Content: "tell me a joke"},
		{Role: models.ChatRoleAssistant, Content: RefusalReply},
		{Role: models.ChatRoleUser, Content: "thanks"},
	}
	assert.Equal(t, "You're welcome! Is there anything else you'd like to know about the website summary?", acknowledgmentReply(transcript))

	assert.Equal(t, acknowledgmentGeneric, acknowledgmentReply([]models.ChatMessage{{Role: models.ChatRoleUser, Content: "ok"}}))
}

func TestContextPhrase(t *testing.T) {
	assert.Equal(t, "what I can do", contextPhrase(HelpReply))
	assert.Equal(t, "the updates analysis", contextPhrase("There is one new announcement."))
	assert.Equal(t, "the time", contextPhrase("It is 10:30 local time."))
	assert.Equal(t, "that topic", contextPhrase("Nursing takes four years."))
}

func TestLastMessages(t *testing.T) {
	transcript := []models.ChatMessage{
		{Role: models.ChatRoleUser, Content: "help"},
		{Role: models.ChatRoleAssistant, Content: HelpReply},
		{Role: models.ChatRoleUser, Content: "help"},
	}
	prevAssistant, prevUser := lastMessages(transcript)
	assert.Equal(t, HelpReply, prevAssistant)
	assert.Equal(t, "help", prevUser)
	assert.Equal(t, HelpReply, immediatePrevAssistant(transcript))
}
