// Package generation turns a presentation request into a slide deck using a
// large language model.
//
// The Generator interface is the boundary the worker depends on. The
// PromptGenerator implementation builds the prompt, delegates the model call
// to a TextModel (see internal/platform/gemini) and parses the model's JSON
// answer into a domain.Presentation.
package generation
