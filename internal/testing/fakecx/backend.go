package fakecx

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"
	"google.golang.org/protobuf/proto"

	"cxkit/internal/provision"
	"cxkit/internal/testrun"
	"cxkit/internal/webhook"
)

// DefaultStartFlowID is the id the service gives every agent's start flow.
const DefaultStartFlowID = "00000000-0000-0000-0000-000000000000"

// NoMatchReply is what the simulated agent says when no route matches.
const NoMatchReply = "Sorry, I didn't get that."

// Backend bundles fake implementations of every CX service the tool uses.
type Backend struct {
	Agents    *Store[*cxpb.Agent]
	Webhooks  *Store[*cxpb.Webhook]
	Intents   *Store[*cxpb.Intent]
	Pages     *Store[*cxpb.Page]
	TestCases *Store[*cxpb.TestCase]
	Flows     *Flows

	mu sync.Mutex
	// NotReadyRuns is the number of upcoming test runs that fail with
	// testrun.ErrModelNotReady.
	NotReadyRuns int
	runs         int
	restores     map[string]string
	sessions     []string
}

// New returns an empty backend. Creating an agent also creates its start
// flow.
func New() *Backend {
	b := &Backend{
		Agents:    NewStore[*cxpb.Agent]("agents"),
		Webhooks:  NewStore[*cxpb.Webhook]("webhooks"),
		Intents:   NewStore[*cxpb.Intent]("intents"),
		Pages:     NewStore[*cxpb.Page]("pages"),
		TestCases: NewStore[*cxpb.TestCase]("testCases"),
		Flows:     &Flows{flows: map[string]*cxpb.Flow{}},
		restores:  map[string]string{},
	}
	b.Agents.OnCreate = func(a *cxpb.Agent) {
		a.StartFlow = a.GetName() + "/flows/" + DefaultStartFlowID
		b.Flows.put(&cxpb.Flow{Name: a.GetStartFlow(), DisplayName: "Default Start Flow"})
	}
	return b
}

// Flows implements provision.FlowAPI in memory.
type Flows struct {
	mu      sync.Mutex
	flows   map[string]*cxpb.Flow
	updates int
	trained []string
}

func (f *Flows) put(flow *cxpb.Flow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flows[flow.GetName()] = flow
}

func (f *Flows) GetFlow(ctx context.Context, name string) (*cxpb.Flow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	flow, ok := f.flows[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", provision.ErrNotFound, name)
	}
	return proto.Clone(flow).(*cxpb.Flow), nil
}

func (f *Flows) UpdateFlow(ctx context.Context, flow *cxpb.Flow, paths ...string) (*cxpb.Flow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.flows[flow.GetName()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", provision.ErrNotFound, flow.GetName())
	}
	for _, path := range paths {
		if path == provision.TransitionRoutesField {
			current.TransitionRoutes = proto.Clone(flow).(*cxpb.Flow).GetTransitionRoutes()
		}
	}
	f.updates++
	return proto.Clone(current).(*cxpb.Flow), nil
}

func (f *Flows) TrainFlow(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.flows[name]; !ok {
		return fmt.Errorf("%w: %s", provision.ErrNotFound, name)
	}
	f.trained = append(f.trained, name)
	return nil
}

// Updates returns how many times UpdateFlow succeeded.
func (f *Flows) Updates() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}

// Trained returns the flows passed to TrainFlow, in order.
func (f *Flows) Trained() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trained...)
}

// RunTestCase implements testrun.Executor by replaying the test case's user
// input through the simulated agent and diffing against its expectations.
func (b *Backend) RunTestCase(ctx context.Context, name string) (*cxpb.TestCaseResult, error) {
	b.mu.Lock()
	b.runs++
	if b.NotReadyRuns > 0 {
		b.NotReadyRuns--
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: flow %s", testrun.ErrModelNotReady, DefaultStartFlowID)
	}
	b.mu.Unlock()

	tc, ok := b.TestCases.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", provision.ErrNotFound, name)
	}
	agentName, _, _ := strings.Cut(name, "/testCases/")

	turns := tc.GetTestCaseConversationTurns()
	if len(turns) == 0 {
		return &cxpb.TestCaseResult{Name: name, TestResult: cxpb.TestResult_PASSED}, nil
	}
	want := turns[0].GetVirtualAgentOutput()
	input := turns[0].GetUserInput().GetInput().GetText().GetText()

	reply := b.respond(agentName, input)

	var diffs []*cxpb.TestRunDifference
	if !equalTexts(flattenTexts(want.GetTextResponses()), reply.texts) {
		diffs = append(diffs, &cxpb.TestRunDifference{Type: cxpb.TestRunDifference_UTTERANCE, Description: "Utterance mismatch"})
	}
	if want.GetTriggeredIntent().GetName() != reply.intent.GetName() {
		diffs = append(diffs, &cxpb.TestRunDifference{Type: cxpb.TestRunDifference_INTENT, Description: "Intent mismatch"})
	}
	if want.GetCurrentPage().GetName() != reply.page.GetName() {
		diffs = append(diffs, &cxpb.TestRunDifference{Type: cxpb.TestRunDifference_PAGE, Description: "Page mismatch"})
	}

	result := cxpb.TestResult_PASSED
	if len(diffs) > 0 {
		result = cxpb.TestResult_FAILED
	}

	responses := make([]*cxpb.ResponseMessage_Text, 0, len(reply.texts))
	for _, text := range reply.texts {
		responses = append(responses, &cxpb.ResponseMessage_Text{Text: []string{text}})
	}
	return &cxpb.TestCaseResult{
		Name:       name,
		TestResult: result,
		ConversationTurns: []*cxpb.ConversationTurn{{
			UserInput: turns[0].GetUserInput(),
			VirtualAgentOutput: &cxpb.ConversationTurn_VirtualAgentOutput{
				CurrentPage:     reply.page,
				TriggeredIntent: reply.intent,
				TextResponses:   responses,
				Differences:     diffs,
			},
		}},
	}, nil
}

// Runs returns how many times RunTestCase was called.
func (b *Backend) Runs() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.runs
}

// DetectIntent answers a session query with the simulated agent.
func (b *Backend) DetectIntent(ctx context.Context, session string, input *cxpb.QueryInput) (*cxpb.QueryResult, error) {
	agentName, _, ok := strings.Cut(session, "/sessions/")
	if !ok {
		return nil, fmt.Errorf("malformed session %q", session)
	}
	if _, found := b.Agents.Lookup(agentName); !found {
		return nil, fmt.Errorf("%w: %s", provision.ErrNotFound, agentName)
	}

	b.mu.Lock()
	b.sessions = append(b.sessions, session)
	b.mu.Unlock()

	text := input.GetText().GetText()
	reply := b.respond(agentName, text)
	result := &cxpb.QueryResult{
		Query:       &cxpb.QueryResult_Text{Text: text},
		CurrentPage: reply.page,
		Intent:      reply.intent,
	}
	for _, t := range reply.texts {
		result.ResponseMessages = append(result.ResponseMessages, &cxpb.ResponseMessage{
			Message: &cxpb.ResponseMessage_Text_{Text: &cxpb.ResponseMessage_Text{Text: []string{t}}},
		})
	}
	return result, nil
}

// Sessions returns every session id passed to DetectIntent.
func (b *Backend) Sessions() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.sessions...)
}

// RestoreAgent records the export URI an agent was restored from.
func (b *Backend) RestoreAgent(ctx context.Context, agent, agentURI string) error {
	if _, ok := b.Agents.Lookup(agent); !ok {
		return fmt.Errorf("%w: %s", provision.ErrNotFound, agent)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.restores[agent] = agentURI
	return nil
}

// RestoredFrom returns the URI agent was last restored from.
func (b *Backend) RestoredFrom(agent string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	uri, ok := b.restores[agent]
	return uri, ok
}

type reply struct {
	texts  []string
	page   *cxpb.Page
	intent *cxpb.Intent
}

// respond follows the first start-flow route whose intent has a training
// phrase equal to input and plays the target page's entry fulfillment.
func (b *Backend) respond(agentName, input string) reply {
	agent, ok := b.Agents.Lookup(agentName)
	if !ok {
		return reply{texts: []string{NoMatchReply}}
	}
	flow, err := b.Flows.GetFlow(context.Background(), agent.GetStartFlow())
	if err != nil {
		return reply{texts: []string{NoMatchReply}}
	}

	for _, route := range flow.GetTransitionRoutes() {
		intent, ok := b.Intents.Lookup(route.GetIntent())
		if !ok || !matches(intent, input) {
			continue
		}
		page, ok := b.Pages.Lookup(route.GetTargetPage())
		if !ok {
			continue
		}
		out := reply{page: page, intent: intent}
		entry := page.GetEntryFulfillment()
		for _, msg := range entry.GetMessages() {
			out.texts = append(out.texts, msg.GetText().GetText()...)
		}
		if entry.GetWebhook() != "" {
			if _, ok := b.Webhooks.Lookup(entry.GetWebhook()); ok {
				out.texts = append(out.texts, webhook.ExpectedReply(entry.GetTag(), input))
			}
		}
		return out
	}
	return reply{texts: []string{NoMatchReply}}
}

func matches(intent *cxpb.Intent, input string) bool {
	for _, phrase := range intent.GetTrainingPhrases() {
		var sb strings.Builder
		for _, part := range phrase.GetParts() {
			sb.WriteString(part.GetText())
		}
		if strings.EqualFold(strings.TrimSpace(sb.String()), strings.TrimSpace(input)) {
			return true
		}
	}
	return false
}

func flattenTexts(texts []*cxpb.ResponseMessage_Text) []string {
	var out []string
	for _, t := range texts {
		out = append(out, t.GetText()...)
	}
	return out
}

func equalTexts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
