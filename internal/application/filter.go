package application

import "github.com/bnema/msgdash/internal/domain"

// Apply returns the rows passing both the recipient and the direction filter.
// The input slice is never modified.
func Apply(records []domain.MessageRecord, selection domain.FilterSelection) []domain.MessageRecord {
	resolved := ResolveSelection(records, selection)

	filtered := filterByRecipients(records, resolved.Recipients.Values)
	return filterByDirections(filtered, resolved.Directions.Values)
}

// ResolveSelection turns the raw UI selection into concrete values:
// select-all becomes the full distinct recipient set, and an untouched
// direction filter becomes every direction observed after the recipient filter.
func ResolveSelection(records []domain.MessageRecord, selection domain.FilterSelection) domain.FilterSelection {
	resolved := domain.FilterSelection{
		Recipients: domain.RecipientSelection{Values: uniqueStrings(selection.Recipients.Values)},
		Directions: domain.DirectionSelection{Chosen: true, Values: uniqueDirections(selection.Directions.Values)},
	}

	if selection.Recipients.All {
		resolved.Recipients.Values = DistinctRecipients(records)
	}

	if !selection.Directions.Chosen {
		resolved.Directions.Values = DirectionOptions(records, resolved.Recipients)
	}

	return resolved
}

// DirectionOptions lists the directions observed among the rows that pass the
// recipient filter, in order of first appearance.
func DirectionOptions(records []domain.MessageRecord, recipients domain.RecipientSelection) []domain.Direction {
	if recipients.All {
		return DistinctDirections(records)
	}

	return DistinctDirections(filterByRecipients(records, recipients.Values))
}

// DistinctRecipients lists recipients in order of first appearance.
func DistinctRecipients(records []domain.MessageRecord) []string {
	seen := make(map[string]struct{}, len(records))
	recipients := make([]string, 0)
	for _, record := range records {
		if _, ok := seen[record.To]; ok {
			continue
		}
		seen[record.To] = struct{}{}
		recipients = append(recipients, record.To)
	}

	return recipients
}

// DistinctDirections lists directions in order of first appearance.
func DistinctDirections(records []domain.MessageRecord) []domain.Direction {
	seen := make(map[domain.Direction]struct{}, 4)
	directions := make([]domain.Direction, 0, 4)
	for _, record := range records {
		if _, ok := seen[record.Direction]; ok {
			continue
		}
		seen[record.Direction] = struct{}{}
		directions = append(directions, record.Direction)
	}

	return directions
}

// An empty recipient set applies no filter.
func filterByRecipients(records []domain.MessageRecord, recipients []string) []domain.MessageRecord {
	if len(recipients) == 0 {
		return append([]domain.MessageRecord(nil), records...)
	}

	allowed := make(map[string]struct{}, len(recipients))
	for _, recipient := range recipients {
		allowed[recipient] = struct{}{}
	}

	filtered := make([]domain.MessageRecord, 0, len(records))
	for _, record := range records {
		if _, ok := allowed[record.To]; ok {
			filtered = append(filtered, record)
		}
	}

	return filtered
}

// An empty direction set applies no filter.
func filterByDirections(records []domain.MessageRecord, directions []domain.Direction) []domain.MessageRecord {
	if len(directions) == 0 {
		return append([]domain.MessageRecord(nil), records...)
	}

	allowed := make(map[domain.Direction]struct{}, len(directions))
	for _, direction := range directions {
		allowed[direction] = struct{}{}
	}

	filtered := make([]domain.MessageRecord, 0, len(records))
	for _, record := range records {
		if _, ok := allowed[record.Direction]; ok {
			filtered = append(filtered, record)
		}
	}

	return filtered
}

func uniqueStrings(values []string) []string {
	result := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}

	return result
}

func uniqueDirections(values []domain.Direction) []domain.Direction {
	result := make([]domain.Direction, 0, len(values))
	seen := make(map[domain.Direction]struct{}, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}

	return result
}
