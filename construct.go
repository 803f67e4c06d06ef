package talon

import "strings"

// FramePayload is the typed payload carried by a construct frame. It
// is a closed set: each multi-line language construct defines its own
// payload type instead of threading opaque pointers through callbacks.
type FramePayload interface {
	framePayload()
}

// LineHandler receives each raw input line while its frame is the top
// of the construct stack, in lieu of normal dispatch.
type LineHandler func(in *Interpreter, fr *Frame, line string) int

// PopHandler is invoked when its frame is popped, e.g. to finalize and
// register a routine.
type PopHandler func(in *Interpreter, fr *Frame) int

// Frame is one active multi-line definition on the construct stack.
type Frame struct {
	// Name is the text fragment this frame contributes to the prompt.
	Name    string
	Payload FramePayload
	OnLine  LineHandler
	OnPop   PopHandler
}

// PushFrame appends a new construct frame and rebuilds the prompt.
func (in *Interpreter) PushFrame(fr *Frame) {
	in.frames = append(in.frames, fr)
	in.rebuildPrompt()
	in.logger.DebugCat(CatConstruct, "pushed construct frame %q (depth %d)", fr.Name, len(in.frames))
}

// PopFrame removes the top construct frame, invoking its pop handler
// first, and returns the handler's result (0 if none). The bottom-most
// frame is the base prompt and is never popped; attempting to pop it
// reports "construct stack is empty" and fails.
func (in *Interpreter) PopFrame() int {
	if len(in.frames) <= 1 {
		in.console.Error("construct stack is empty")
		return ResultError
	}
	fr := in.frames[len(in.frames)-1]
	code := ResultOK
	if fr.OnPop != nil {
		code = fr.OnPop(in, fr)
	}
	in.frames = in.frames[:len(in.frames)-1]
	in.rebuildPrompt()
	in.logger.DebugCat(CatConstruct, "popped construct frame %q (depth %d)", fr.Name, len(in.frames))
	return code
}

// FrameDepth returns the current construct stack depth, including the
// base frame.
func (in *Interpreter) FrameDepth() int {
	return len(in.frames)
}

// activeFrame returns the top construct frame if one is active above
// the base frame, else nil.
func (in *Interpreter) activeFrame() *Frame {
	if len(in.frames) <= 1 {
		return nil
	}
	return in.frames[len(in.frames)-1]
}

// rebuildPrompt concatenates all frame names bottom-to-top, joined by
// the configured delimiter and terminated by the prompt suffix.
func (in *Interpreter) rebuildPrompt() {
	names := make([]string, len(in.frames))
	for i, fr := range in.frames {
		names[i] = fr.Name
	}
	in.prompt = strings.Join(names, in.config.PromptDelimiter) + in.config.PromptSuffix
}

// Prompt returns the current interactive prompt text.
func (in *Interpreter) Prompt() string {
	return in.prompt
}
