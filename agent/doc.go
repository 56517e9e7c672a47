// Package agent turns a core.Agent persona into something the dispatcher can
// call. The package focuses on three concerns:
//
//  1. Handle, the Responder that renders a prompt and performs one gateway call
//  2. Prompts, the group-chat templates for broadcast, continuation and debate rounds
//  3. Instruction, a static or dynamic persona system prompt
//
// Every persona shares the same call path; distinctiveness lives entirely in
// the instructions and model id carried by the core.Agent.
package agent
