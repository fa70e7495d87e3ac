package provision

import (
	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"
)

// BuildAgent returns the create payload for an agent.
func BuildAgent(displayName, languageCode, timeZone string) *cxpb.Agent {
	return &cxpb.Agent{
		DisplayName:         displayName,
		DefaultLanguageCode: languageCode,
		TimeZone:            timeZone,
	}
}

// BuildWebhook returns the create payload for a generic web service webhook.
func BuildWebhook(displayName, uri string) *cxpb.Webhook {
	return &cxpb.Webhook{
		DisplayName: displayName,
		Webhook: &cxpb.Webhook_GenericWebService_{
			GenericWebService: &cxpb.Webhook_GenericWebService{Uri: uri},
		},
	}
}

// TrainingPhrases turns plain utterances into single-part training phrases.
func TrainingPhrases(texts ...string) []*cxpb.Intent_TrainingPhrase {
	phrases := make([]*cxpb.Intent_TrainingPhrase, 0, len(texts))
	for _, text := range texts {
		phrases = append(phrases, &cxpb.Intent_TrainingPhrase{
			Parts:       []*cxpb.Intent_TrainingPhrase_Part{{Text: text}},
			RepeatCount: 1,
		})
	}
	return phrases
}

// PhrasePart is one segment of an annotated training phrase. ParameterID is
// empty for literal text.
type PhrasePart struct {
	Text        string
	ParameterID string
}

// AnnotatedPhrase builds a training phrase whose parts may be tagged with
// intent parameters.
func AnnotatedPhrase(parts ...PhrasePart) *cxpb.Intent_TrainingPhrase {
	phrase := &cxpb.Intent_TrainingPhrase{RepeatCount: 1}
	for _, p := range parts {
		phrase.Parts = append(phrase.Parts, &cxpb.Intent_TrainingPhrase_Part{
			Text:        p.Text,
			ParameterId: p.ParameterID,
		})
	}
	return phrase
}

// SysAnyEntityType is the system entity that accepts any value.
const SysAnyEntityType = "projects/-/locations/-/agents/-/entityTypes/sys.any"

// Parameter declares an intent parameter of the given entity type.
func Parameter(id, entityType string) *cxpb.Intent_Parameter {
	return &cxpb.Intent_Parameter{Id: id, EntityType: entityType}
}

// BuildIntent returns the create payload for an intent.
func BuildIntent(displayName string, phrases []*cxpb.Intent_TrainingPhrase, params []*cxpb.Intent_Parameter) *cxpb.Intent {
	return &cxpb.Intent{
		DisplayName:     displayName,
		TrainingPhrases: phrases,
		Parameters:      params,
	}
}

// BuildEntryFulfillment returns a fulfillment that replies with text and,
// when webhookName is set, also calls the webhook with tag.
func BuildEntryFulfillment(text, webhookName, tag string) *cxpb.Fulfillment {
	f := &cxpb.Fulfillment{
		Messages: []*cxpb.ResponseMessage{textMessage(text)},
	}
	if webhookName != "" {
		f.Webhook = webhookName
		f.Tag = tag
	}
	return f
}

// BuildPage returns the create payload for a page.
func BuildPage(displayName string, entry *cxpb.Fulfillment) *cxpb.Page {
	return &cxpb.Page{
		DisplayName:      displayName,
		EntryFulfillment: entry,
	}
}

// TestCaseSpec describes a single-turn test case.
type TestCaseSpec struct {
	DisplayName    string
	InputText      string
	LanguageCode   string
	WebhookEnabled bool
	ExpectedTexts  []string
	ExpectedPage   *cxpb.Page
	ExpectedIntent *cxpb.Intent
	Flow           string
}

// BuildTestCase returns the create payload for a one-turn test case.
func BuildTestCase(spec TestCaseSpec) *cxpb.TestCase {
	responses := make([]*cxpb.ResponseMessage_Text, 0, len(spec.ExpectedTexts))
	for _, text := range spec.ExpectedTexts {
		responses = append(responses, &cxpb.ResponseMessage_Text{Text: []string{text}})
	}

	return &cxpb.TestCase{
		DisplayName: spec.DisplayName,
		TestCaseConversationTurns: []*cxpb.ConversationTurn{{
			UserInput: &cxpb.ConversationTurn_UserInput{
				Input:            TextQuery(spec.InputText, spec.LanguageCode),
				IsWebhookEnabled: spec.WebhookEnabled,
			},
			VirtualAgentOutput: &cxpb.ConversationTurn_VirtualAgentOutput{
				CurrentPage:     spec.ExpectedPage,
				TriggeredIntent: spec.ExpectedIntent,
				TextResponses:   responses,
			},
		}},
		TestConfig: &cxpb.TestConfig{Flow: spec.Flow},
	}
}

// TextQuery wraps an utterance as a query input.
func TextQuery(text, languageCode string) *cxpb.QueryInput {
	return &cxpb.QueryInput{
		Input:        &cxpb.QueryInput_Text{Text: &cxpb.TextInput{Text: text}},
		LanguageCode: languageCode,
	}
}

func textMessage(text string) *cxpb.ResponseMessage {
	return &cxpb.ResponseMessage{
		Message: &cxpb.ResponseMessage_Text_{
			Text: &cxpb.ResponseMessage_Text{Text: []string{text}},
		},
	}
}
