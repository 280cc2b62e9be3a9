// Package actions is the closed set of inline-button actions. Each action is
// carried in Telegram callback data as "unique|payload" and decoded back with
// an exhaustive switch.
package actions

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/qazobot/qazobot/app/prayer"
	"github.com/qazobot/qazobot/app/qazo"
)

// ErrMalformed is returned for unknown kinds and bad payloads.
var ErrMalformed = errors.New("actions: malformed callback")

// Kind is the callback unique key.
type Kind string

const (
	Noop        Kind = "noop"
	Menu        Kind = "menu"
	Back        Kind = "back"
	Subscribed  Kind = "subs"
	QazoPanel   Kind = "qz"
	QazoInc     Kind = "qz_inc"
	QazoDec     Kind = "qz_dec"
	RangeStart  Kind = "rng"
	RangeUnit   Kind = "rng_u"
	PrayerTimes Kind = "pt"
	PTRegion    Kind = "pt_r"
	PTCity      Kind = "pt_c"
	FAQList     Kind = "faq"
	FAQAnswer   Kind = "faq_a"

	AdminStats         Kind = "adm_stats"
	AdminBroadcast     Kind = "adm_bc"
	AdminChannelAdd    Kind = "adm_ch_add"
	AdminChannelRemove Kind = "adm_ch_rm"
	AdminChannelList   Kind = "adm_ch_ls"
	AdminList          Kind = "adm_ls"
	AdminAdd           Kind = "adm_add"
	AdminRemove        Kind = "adm_rm"
	AdminFAQAdd        Kind = "adm_faq"
)

// Kinds lists every action kind.
func Kinds() []Kind {
	return []Kind{
		Noop, Menu, Back, Subscribed,
		QazoPanel, QazoInc, QazoDec, RangeStart, RangeUnit,
		PrayerTimes, PTRegion, PTCity, FAQList, FAQAnswer,
		AdminStats, AdminBroadcast, AdminChannelAdd, AdminChannelRemove,
		AdminChannelList, AdminList, AdminAdd, AdminRemove, AdminFAQAdd,
	}
}

// AdminOnly reports whether the kind belongs to the admin panel.
func (k Kind) AdminOnly() bool {
	return strings.HasPrefix(string(k), "adm_")
}

// Action is one decoded button press. Only the fields relevant to Kind are set.
type Action struct {
	Kind   Kind
	Prayer prayer.Type
	Unit   qazo.Unit
	ID     int64
	Region int
	City   int
}

// Encode returns the unique key and payload for a button.
func (a Action) Encode() (string, string) {
	switch a.Kind {
	case QazoInc, QazoDec:
		return string(a.Kind), string(a.Prayer)
	case RangeUnit:
		return string(a.Kind), string(a.Unit)
	case FAQAnswer:
		return string(a.Kind), strconv.FormatInt(a.ID, 10)
	case PTRegion:
		return string(a.Kind), strconv.Itoa(a.Region)
	case PTCity:
		return string(a.Kind), strconv.Itoa(a.Region) + ":" + strconv.Itoa(a.City)
	default:
		return string(a.Kind), ""
	}
}

// Parse decodes a unique key and payload.
func Parse(unique, payload string) (Action, error) {
	k := Kind(unique)
	a := Action{Kind: k}
	var err error
	switch k {
	case Noop, Menu, Back, Subscribed, QazoPanel, RangeStart, PrayerTimes, FAQList,
		AdminStats, AdminBroadcast, AdminChannelAdd, AdminChannelRemove,
		AdminChannelList, AdminList, AdminAdd, AdminRemove, AdminFAQAdd:
		return a, nil
	case QazoInc, QazoDec:
		a.Prayer, err = prayer.Parse(payload)
	case RangeUnit:
		a.Unit, err = qazo.ParseUnit(payload)
	case FAQAnswer:
		a.ID, err = strconv.ParseInt(payload, 10, 64)
		if err == nil && a.ID <= 0 {
			err = errors.New("non-positive id")
		}
	case PTRegion:
		a.Region, err = parseIndex(payload)
	case PTCity:
		r, c, ok := strings.Cut(payload, ":")
		if !ok {
			err = errors.New("missing city index")
			break
		}
		if a.Region, err = parseIndex(r); err == nil {
			a.City, err = parseIndex(c)
		}
	default:
		return Action{}, fmt.Errorf("%w: unknown kind %q", ErrMalformed, unique)
	}
	if err != nil {
		return Action{}, fmt.Errorf("%w: %s %q: %w", ErrMalformed, unique, payload, err)
	}
	return a, nil
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative index")
	}
	return n, nil
}
