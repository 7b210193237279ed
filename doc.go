/*
Package hostflow is a conversation-flow engine for voice agents that host a structured conversation, such as a podcast interview.

A flow is a graph of nodes. Each node gives the language model a persona, a task and a small set of actions (tool functions). When the model invokes an action, the engine validates its arguments against the action's schema, records them and moves the session to the action's successor node. Reaching a node whose entry effects include end_conversation ends the session.

# Concept

The engine only decides. It never talks to a model or a guest. The session driver (package runner) owns the loop: it speaks, listens, asks the model for the next turn and feeds tool calls back to the engine. Speech, telephony and model vendors plug in through the interfaces in package ports.

Sessions are plain values. Start and Transition return a new *domain.Session and never mutate the one they were given, so a host can snapshot, persist or diff them freely.

# Usage

	eng, err := hostflow.New("./flows/podcast_host.yaml")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	sess, err := eng.Start(ctx, hostflow.NewSessionID())
	if err != nil {
		log.Fatal(err)
	}

	// What can the model do right now?
	tools, _ := eng.Manifest(sess)

	// The model chose an action.
	sess, err = eng.Transition(ctx, sess, domain.ToolCall{
		Name:      "begin_interview",
		Arguments: map[string]any{"guest_name": "Ada"},
	})

To run a whole conversation, hand the engine a model and a transport:

	r := eng.NewRunner(model)
	final, err := r.Run(ctx, transport)
*/
package hostflow
