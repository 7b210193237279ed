/*
Package runner implements the session driver: the turn loop that connects a
guest transport, a language model and the conversation flow.

Each turn the runner builds the system text and the action manifest for the
current node, asks the model for the host's reply, speaks any text and feeds
an action invocation to the flow. Rejected invocations are answered with a
corrective tool result and the same node is retried. The loop ends when the
flow reaches a terminal node, when the guest disconnects (any in-flight model
reply is discarded) or when a collaborator fails.
*/
package runner
