package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	council "github.com/Hrishikeshgupta2002/AI-Council"
	"github.com/Hrishikeshgupta2002/AI-Council/core"
	"github.com/Hrishikeshgupta2002/AI-Council/debate"
	"github.com/Hrishikeshgupta2002/AI-Council/synthesis"
)

// ansiColors maps the color names accepted in the roster to ANSI codes.
// Anything else (hex, 256-color codes) is passed to lipgloss unchanged.
var ansiColors = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
}

func colorFor(name string) lipgloss.Color {
	if code, ok := ansiColors[strings.ToLower(name)]; ok {
		return lipgloss.Color(code)
	}
	return lipgloss.Color(name)
}

// renderer writes the conversation to the terminal.
type renderer struct {
	w        io.Writer
	personas map[string]string
	agents   map[string]lipgloss.Style

	title   lipgloss.Style
	user    lipgloss.Style
	heading lipgloss.Style
	dim     lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	panel   lipgloss.Style
	label   lipgloss.Style
}

func newRenderer(w io.Writer, agents []core.Agent, colors map[string]string) *renderer {
	lg := lipgloss.NewRenderer(w)

	r := &renderer{
		w:        w,
		personas: make(map[string]string, len(agents)),
		agents:   make(map[string]lipgloss.Style, len(agents)),
		title:    lg.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		user:     lg.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		heading:  lg.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		dim:      lg.NewStyle().Faint(true),
		warn:     lg.NewStyle().Foreground(lipgloss.Color("3")),
		err:      lg.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		panel:    lg.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		label:    lg.NewStyle().Bold(true),
	}

	for _, a := range agents {
		r.personas[a.Name()] = a.Persona()
		style := lg.NewStyle().Bold(true)
		if c := colors[a.Name()]; c != "" {
			style = style.Foreground(colorFor(c))
		}
		r.agents[a.Name()] = style
	}

	return r
}

func (r *renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *renderer) header(agents []core.Agent, method core.Method, gateway string) {
	var b strings.Builder

	b.WriteString(r.title.Render("AI COUNCIL"))
	b.WriteString("\n\n")

	for _, a := range agents {
		fmt.Fprintf(&b, "%s  %s  %s\n",
			r.speaker(a.Name()),
			r.dim.Render(a.Persona()),
			r.dim.Render(fmt.Sprintf("weight %.2f, %s", a.Weight(), a.Model())),
		)
	}

	fmt.Fprintf(&b, "\n%s %s\n", r.label.Render("Gateway:"), gateway)
	fmt.Fprintf(&b, "%s %s", r.label.Render("Decision model:"), methodLabel(method))

	r.printf("%s\n", r.panel.Render(b.String()))
}

func (r *renderer) help(names []string) {
	tags := make([]string, 0, len(names))
	for _, n := range names {
		tags = append(tags, "@"+n)
	}

	r.printf("%s\n", r.dim.Render("Type a message, press Enter for another round, /synth to synthesize, exit to quit."))
	r.printf("%s\n", r.dim.Render("Tag two or more agents ("+strings.Join(tags, " ")+") to start a debate."))
}

func (r *renderer) prompt() {
	r.printf("\n%s ", r.user.Render(">"))
}

func (r *renderer) speaker(name string) string {
	if style, ok := r.agents[name]; ok {
		return style.Render(name)
	}
	return r.label.Render(name)
}

func (r *renderer) utterance(u core.Utterance) {
	if u.IsUser() {
		r.printf("%s %s\n", r.user.Render(core.UserName+":"), u.Body)
		return
	}

	who := r.speaker(u.Agent)
	if p := r.personas[u.Agent]; p != "" {
		who += " " + r.dim.Render("("+p+")")
	}

	if !u.OK() {
		reason := string(u.Status)
		if u.Reason != "" {
			reason += ": " + u.Reason
		}
		r.printf("%s %s\n", who, r.warn.Render("(no response, "+reason+")"))
		return
	}

	r.printf("%s %s\n", who, u.Body)
}

func (r *renderer) round(res council.TurnResult, echoUser bool) {
	switch res.Round.Mode {
	case core.ModeDebate:
		r.printf("\n%s\n", r.heading.Render(fmt.Sprintf("Round %d: debate between %s", res.Round.Number, strings.Join(res.Round.Participants, ", "))))
	default:
		r.printf("\n%s\n", r.heading.Render(fmt.Sprintf("Round %d", res.Round.Number)))
	}

	for _, tag := range res.UnknownTags {
		r.printf("%s\n", r.warn.Render("No agent named @"+tag+"."))
	}

	exchange := 0
	replies := 0

	for _, u := range res.Utterances {
		if u.IsUser() && !echoUser {
			continue
		}
		if u.Exchange != exchange && u.Exchange > 0 {
			exchange = u.Exchange
			r.printf("%s\n", r.dim.Render(fmt.Sprintf("Exchange %d of %d", exchange, res.Round.MaxExchanges)))
		}
		if !u.IsUser() {
			replies++
		}
		r.utterance(u)
	}

	if len(res.Declined) > 0 {
		r.printf("%s\n", r.dim.Render(strings.Join(res.Declined, ", ")+" had nothing to add."))
	}

	if replies == 0 && res.Round.Mode == core.ModeContinuation {
		r.printf("%s\n", r.dim.Render("No agents responded this round."))
	}

	if res.Round.Mode == core.ModeDebate {
		r.printf("%s\n", r.dim.Render(stopLabel(res.Stop, res.Exchanges)))
	}
}

func stopLabel(stop debate.StopReason, exchanges int) string {
	switch stop {
	case debate.StopResolved:
		return fmt.Sprintf("Debate settled after %d exchange(s).", exchanges)
	case debate.StopAllFailed:
		return "Debate stopped: no agent responded."
	case debate.StopCancelled:
		return "Debate cancelled."
	default:
		return fmt.Sprintf("Debate ended after %d exchange(s).", exchanges)
	}
}

func methodLabel(m core.Method) string {
	if m == core.MethodMajority {
		return "majority voting (equal weights)"
	}
	return "weighted model"
}

func (r *renderer) synthesis(res core.SynthesisResult) {
	var b strings.Builder

	b.WriteString(r.title.Render("SYNTHESIS"))
	b.WriteString("\n")

	if res.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n%s\n", r.label.Render("Summary"), res.Summary)
	}

	r.list(&b, "Agreements", res.Agreements)
	r.list(&b, "Conflicts", res.Conflicts)
	r.list(&b, "Blind spots", res.BlindSpots)

	fmt.Fprintf(&b, "\n%s\n", r.label.Render("Recommendation"))
	if len(res.Options) > 0 {
		for i, opt := range res.Options {
			fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
		}
	} else {
		fmt.Fprintf(&b, "%s\n", res.Recommendation)
	}

	fmt.Fprintf(&b, "\n%s %s, confidence %.0f%%\n", r.label.Render("Decision:"), methodLabel(res.Method), res.Confidence*100)

	for _, wl := range synthesis.RankedWeights(res.Weights) {
		fmt.Fprintf(&b, "  %s %s\n", r.speaker(wl.Name), r.dim.Render(fmt.Sprintf("%.2f", wl.Weight)))
	}

	if !res.Structured {
		b.WriteString("\n" + r.warn.Render("The synthesis did not follow the expected format; showing it as-is."))
	}

	r.printf("\n%s\n", r.panel.Render(strings.TrimRight(b.String(), "\n")))
}

func (r *renderer) list(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}

	fmt.Fprintf(b, "\n%s\n", r.label.Render(title))
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}

func (r *renderer) notice(msg string) {
	r.printf("%s\n", r.dim.Render(msg))
}

func (r *renderer) warning(msg string) {
	r.printf("%s\n", r.warn.Render(msg))
}

func (r *renderer) failure(err error) {
	r.printf("%s %v\n", r.err.Render("Error:"), err)
}
