package agent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shaiso/Agron/internal/domain"
)

// Словари ключевых слов для распознавания намерений.
//
// Порядок проверок важен: «finished spraying greenhouse 1» содержит
// и слово завершения, и вид работы, и название участка — побеждает
// более специфичное намерение (см. KeywordClassifier).
var (
	completionWords = []string{
		"done", "finished", "completed", "закончил", "сделал", "выполнил", "готово",
	}

	postponeWords = []string{
		"postpone", "delay", "reschedule", "move", "later",
		"перенеси", "отложи", "позже",
	}

	taskWords = []string{
		"task", "tasks", "todo", "plan", "schedule",
		"задач", "план",
	}

	searchWords = []string{
		"history", "log", "logs", "records", "show", "search", "what did",
		"журнал", "истори", "покажи", "что дела",
	}

	fieldWords = []string{
		"field", "greenhouse", "plot", "bed", "crop", "growing", "area",
		"участ", "теплиц", "грядк", "культур",
	}
)

// workTypeVerbs — глаголы отчёта о работе → вид работы.
var workTypeVerbs = map[string]string{
	"watered":    domain.WorkTypeIrrigation,
	"irrigated":  domain.WorkTypeIrrigation,
	"watering":   domain.WorkTypeIrrigation,
	"полил":      domain.WorkTypeIrrigation,
	"sprayed":    domain.WorkTypePestControl,
	"spraying":   domain.WorkTypePestControl,
	"обработал":  domain.WorkTypePestControl,
	"fertilized": domain.WorkTypeFertilizing,
	"удобрил":    domain.WorkTypeFertilizing,
	"harvested":  domain.WorkTypeHarvest,
	"picked":     domain.WorkTypeHarvest,
	"собрал":     domain.WorkTypeHarvest,
	"weeded":     domain.WorkTypeWeeding,
	"прополол":   domain.WorkTypeWeeding,
	"planted":    domain.WorkTypePlanting,
	"посадил":    domain.WorkTypePlanting,
	"sowed":      domain.WorkTypePlanting,
	"посеял":     domain.WorkTypePlanting,
}

// workTypeNouns — упоминания вида работы существительным.
var workTypeNouns = map[string]string{
	"irrigation":    domain.WorkTypeIrrigation,
	"полив":         domain.WorkTypeIrrigation,
	"pest":          domain.WorkTypePestControl,
	"spraying":      domain.WorkTypePestControl,
	"вредител":      domain.WorkTypePestControl,
	"fertilizing":   domain.WorkTypeFertilizing,
	"fertilizer":    domain.WorkTypeFertilizing,
	"подкормк":      domain.WorkTypeFertilizing,
	"harvest":       domain.WorkTypeHarvest,
	"урожа":         domain.WorkTypeHarvest,
	"weeding":       domain.WorkTypeWeeding,
	"прополк":       domain.WorkTypeWeeding,
	"planting":      domain.WorkTypePlanting,
	"посадк":        domain.WorkTypePlanting,
	"transplanting": domain.WorkTypePlanting,
}

// containsAny проверяет наличие любого из слов в тексте.
// Текст и словари сравниваются в нижнем регистре.
func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// detectWorkType распознаёт вид работы в тексте.
// Глаголы отчёта имеют приоритет над существительными.
func detectWorkType(text string) (string, bool) {
	for verb, wt := range workTypeVerbs {
		if strings.Contains(text, verb) {
			return wt, true
		}
	}
	for noun, wt := range workTypeNouns {
		if strings.Contains(text, noun) {
			return wt, true
		}
	}
	return "", false
}

// hasReportVerb проверяет, есть ли в тексте глагол отчёта о работе.
func hasReportVerb(text string) bool {
	for verb := range workTypeVerbs {
		if strings.Contains(text, verb) {
			return true
		}
	}
	return false
}

var quantityRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(kg|кг|l|л|liters?|литр\w*)`)

// detectQuantity извлекает количество и единицу измерения.
func detectQuantity(text string) (float64, string, bool) {
	m := quantityRe.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, "", false
	}

	unit := m[2]
	switch {
	case strings.HasPrefix(unit, "k"), strings.HasPrefix(unit, "к"):
		unit = "kg"
	default:
		unit = "l"
	}
	return value, unit, true
}

// detectDateRange распознаёт относительный период в тексте.
// now — опорное время; границы возвращаются в UTC.
func detectDateRange(text string, now time.Time) (from, to time.Time, ok bool) {
	day := now.UTC().Truncate(24 * time.Hour)
	switch {
	case strings.Contains(text, "today") || strings.Contains(text, "сегодня"):
		return day, day.Add(24 * time.Hour), true
	case strings.Contains(text, "yesterday") || strings.Contains(text, "вчера"):
		return day.Add(-24 * time.Hour), day, true
	case strings.Contains(text, "last week") || strings.Contains(text, "за неделю") || strings.Contains(text, "прошл"):
		return day.Add(-7 * 24 * time.Hour), day.Add(24 * time.Hour), true
	case strings.Contains(text, "month") || strings.Contains(text, "месяц"):
		return day.Add(-30 * 24 * time.Hour), day.Add(24 * time.Hour), true
	}
	return time.Time{}, time.Time{}, false
}

// detectPostponeTarget распознаёт, на когда переносить задачу.
// По умолчанию — на завтра.
func detectPostponeTarget(text string, now time.Time) time.Time {
	day := now.UTC().Truncate(24 * time.Hour)
	switch {
	case strings.Contains(text, "next week") || strings.Contains(text, "следующ"):
		return day.Add(7 * 24 * time.Hour)
	case strings.Contains(text, "day after") || strings.Contains(text, "послезавтра"):
		return day.Add(2 * 24 * time.Hour)
	default:
		return day.Add(24 * time.Hour)
	}
}

// matchFieldName ищет участок, название которого упомянуто в тексте.
// Возвращает самое длинное совпадение: «greenhouse 1» побеждает
// «greenhouse».
func matchFieldName(text string, fields []domain.Field) (*domain.Field, bool) {
	var best *domain.Field
	bestLen := 0
	for i := range fields {
		name := strings.ToLower(fields[i].Name)
		if name != "" && strings.Contains(text, name) && len(name) > bestLen {
			best = &fields[i]
			bestLen = len(name)
		}
	}
	return best, best != nil
}
