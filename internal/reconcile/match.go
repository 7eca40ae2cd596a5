package reconcile

import (
	"github.com/sovcrm/crm-cli/internal/model"
)

// Phone-match scoring weights. Exact digit equality dominates, a matching
// name outranks any support signal, and support breaks remaining ties.
const (
	weightExactPhone = 100
	weightSameName   = 10
)

// SupportScore measures secondary agreement between two leads: owner match
// counts 2, origin match counts 1. Empty fields never count.
func SupportScore(base, incoming model.Lead) int {
	score := 0
	baseOwner := NormalizeComparable(base.Owner)
	incomingOwner := NormalizeComparable(incoming.Owner)
	if baseOwner != "" && baseOwner == incomingOwner {
		score += 2
	}
	baseOrigin := NormalizeComparable(base.Origin)
	incomingOrigin := NormalizeComparable(incoming.Origin)
	if baseOrigin != "" && baseOrigin == incomingOrigin {
		score += 1
	}
	return score
}

// FindMatch locates the existing lead an incoming lead should merge into,
// or -1 when no safe match exists. The cascade tries exact id, then phone
// similarity, then exact normalized name; each tier is consulted only when
// the previous one finds nothing.
func FindMatch(existing []model.Lead, incoming model.Lead) int {
	if incomingID := SanitizeString(incoming.ID, maxIDLen); incomingID != "" {
		for i, l := range existing {
			if SanitizeString(l.ID, maxIDLen) == incomingID {
				return i
			}
		}
	}
	if idx := findBestPhoneMatch(existing, incoming); idx >= 0 {
		return idx
	}
	return findBestNameMatch(existing, incoming)
}

// findBestPhoneMatch scores every phone-similar candidate and returns the
// best one. Ties keep the first-encountered candidate (stable scan order).
func findBestPhoneMatch(existing []model.Lead, incoming model.Lead) int {
	incomingPhone := PhoneDigits(incoming.Phone)
	if incomingPhone == "" {
		return -1
	}
	incomingName := NormalizeComparable(incoming.Name)

	bestIdx := -1
	bestScore := -1
	for i, l := range existing {
		if !PhonesAreSimilar(l.Phone, incomingPhone) {
			continue
		}
		score := SupportScore(l, incoming)
		if PhoneDigits(l.Phone) == incomingPhone {
			score += weightExactPhone
		}
		if NormalizeComparable(l.Name) == incomingName {
			score += weightSameName
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return bestIdx
}

// findBestNameMatch matches on exact normalized name. Multiple candidates
// are disambiguated by support score (owner before origin); if the best
// support score is shared, no match is reported — merging unrelated
// customers is worse than a duplicate a human can reconcile later.
func findBestNameMatch(existing []model.Lead, incoming model.Lead) int {
	incomingName := NormalizeComparable(incoming.Name)
	if incomingName == "" {
		return -1
	}

	bestIdx := -1
	bestScore := -1
	tied := false
	for i, l := range existing {
		name := NormalizeComparable(l.Name)
		if name == "" || name != incomingName {
			continue
		}
		score := SupportScore(l, incoming)
		switch {
		case score > bestScore:
			bestScore = score
			bestIdx = i
			tied = false
		case score == bestScore:
			tied = true
		}
	}
	if tied {
		return -1
	}
	return bestIdx
}
