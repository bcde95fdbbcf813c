package dialogue

import "dumplingtale/internal/story"

type hookState struct {
	line    story.Hook
	text    reveal
	phase   Phase
	choices []story.HookChoice
	done    func()
}

// PlayHook opens an in-session line on top of the current node. done runs
// exactly once when the line closes: after a choice is picked, or on
// Continue when the line has no choices. Opening a new line while one is
// open closes the old one first.
func (e *Engine) PlayHook(h story.Hook, done func()) {
	if e.hook != nil {
		e.closeHook()
	}
	e.hook = &hookState{line: h, phase: Revealing, done: done}
	e.view.ShowSpeaker(h.Speaker, h.Speaker == "")
	e.view.HideChoices()
	e.hook.text.start(h.Text)
	e.view.ShowText(e.hook.text.visible(), false)
	if e.hook.text.done(e.delay) {
		e.finishHookReveal()
	}
}

func (e *Engine) finishHookReveal() {
	hs := e.hook
	hs.text.complete()
	e.view.ShowText(hs.text.visible(), true)
	if len(hs.line.Choices) == 0 {
		hs.phase = AwaitingContinue
		return
	}
	hs.phase = AwaitingChoice
	hs.choices = hs.line.Choices
	views := make([]ChoiceView, len(hs.choices))
	for i, c := range hs.choices {
		views[i] = ChoiceView{Index: i, Text: c.Text}
	}
	e.view.ShowChoices(views)
}

func (e *Engine) selectHookChoice(index int) bool {
	hs := e.hook
	if hs.phase != AwaitingChoice || index < 0 || index >= len(hs.choices) {
		return false
	}
	e.audio.Play(CueButtonClick)
	if flag := hs.choices[index].SetsFlag; flag != "" {
		e.flags.Set(flag, true)
	}
	e.closeHook()
	return true
}

func (e *Engine) closeHook() {
	hs := e.hook
	e.hook = nil
	e.view.HideChoices()
	if e.node != nil {
		e.view.ShowSpeaker(e.node.Speaker, e.node.Speaker == "")
		e.view.ShowText(e.text.visible(), e.text.full)
	}
	if hs.done != nil {
		hs.done()
	}
}
