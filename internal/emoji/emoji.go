package emoji

import (
	"fmt"
	"strings"

	"github.com/drakos74/coin-ensemble/internal/model"
)

// https://unicode.org/emoji/charts/full-emoji-list.html
const (
	FullEclipse  = "🌑"
	ThirdEclipse = "🌒"
	HalfEclipse  = "🌓"
	FirstEclipse = "🌔"
	FullMoon     = "🌕"

	DotSnow  = "❄"
	DotFire  = "🔥"
	DotWater = "💧"

	Biohazard = "😝"
	Recycling = "🤑"
	Zero      = "🥜"

	Open  = "🔔"
	Close = "🔕"
)

var phases = []string{FullEclipse, ThirdEclipse, HalfEclipse, FirstEclipse, FullMoon}

// MapAction maps the action to its emoji.
func MapAction(a model.Action) string {
	switch a {
	case model.Buy:
		return Recycling
	case model.Sell:
		return Biohazard
	}
	return Zero
}

// MapToSign maps the given float value according to it's sign.
func MapToSign(f float64) string {
	emo := DotSnow
	if f > 0 {
		emo = DotFire
	} else if f < 0 {
		emo = DotWater
	}
	return emo
}

// MapConfidence maps a value in [0,1] to a moon phase.
func MapConfidence(f float64) string {
	i := int(f * float64(len(phases)))
	if i < 0 {
		i = 0
	}
	if i >= len(phases) {
		i = len(phases) - 1
	}
	return phases[i]
}

// MapUrgency rings the bell for urgent decisions.
func MapUrgency(u model.Urgency) string {
	if u == model.High {
		return Open
	}
	return Close
}

// Decision renders a one line summary of the decision.
func Decision(d model.Decision) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s %s", MapAction(d.Action), d.Symbol, d.Action))
	sb.WriteString(fmt.Sprintf(" %s", MapConfidence(d.Confidence)))
	sb.WriteString(fmt.Sprintf(" %s", MapUrgency(d.Urgency)))
	for _, s := range d.Strategies {
		sb.WriteString(fmt.Sprintf(" %s", s))
	}
	return sb.String()
}

// Signals renders the direction of each signal.
func Signals(ss []model.Signal) string {
	emojis := make([]string, len(ss))
	for i, s := range ss {
		emojis[i] = MapToSign(s.Action.Sign())
	}
	return strings.Join(emojis, "")
}
