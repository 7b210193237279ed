/*
Package domain contains the core models of the conversation flow engine.

It defines the entities of the state machine (Nodes, Actions, Effects and
Sessions) together with the error taxonomy and lifecycle events. The package
is kept free of I/O and persistence.

# Key Entities

  - Node: a conversational state with task instructions, actions and entry effects.
  - Action: a structured operation the model may invoke, with an argument schema and a successor.
  - Effect: a side effect run on node entry; "end_conversation" is reserved.
  - Session: the runtime snapshot (current node, status, collected arguments, history).
*/
package domain
