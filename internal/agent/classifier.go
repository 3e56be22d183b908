package agent

import (
	"context"
	"strings"
)

// KeywordClassifier — детерминированный классификатор по словарям.
//
// Правила проверяются по порядку, побеждает первое сработавшее:
//
//  1. задача завершена, журнал ещё не записан → work_log_entry
//  2. ответ уже готов → FINISH
//  3. слова завершения/переноса или упоминание задач → task_manager
//  4. слова поиска по журналу → work_log_search
//  5. глагол отчёта о работе → work_log_entry
//  6. упоминание участка или культуры → field_info
//  7. иначе → FINISH (оркестратор ответит подсказкой)
//
// Правило 1 стоит первым намеренно: завершение повторяющейся работы
// проходит два воркера (task_manager закрывает задачу, work_log_entry
// дописывает журнал), и готовый ответ task_manager не должен
// обрывать цепочку раньше времени.
type KeywordClassifier struct{}

// NewKeywordClassifier создаёт KeywordClassifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify выбирает следующий шаг по тексту сообщения и scratchpad.
func (c *KeywordClassifier) Classify(ctx context.Context, st *State) (string, error) {
	if st.HasScratch(ScratchCompletedTask) && !st.HasScratch(ScratchWorkLogID) {
		return WorkerWorkLogEntry, nil
	}
	if st.HasScratch(ScratchReply) {
		return RouteFinish, nil
	}

	text := strings.ToLower(st.UserText())

	switch {
	case containsAny(text, completionWords),
		containsAny(text, postponeWords),
		containsAny(text, taskWords):
		return WorkerTaskManager, nil
	case containsAny(text, searchWords):
		return WorkerWorkLogSearch, nil
	case hasReportVerb(text):
		return WorkerWorkLogEntry, nil
	case containsAny(text, fieldWords):
		return WorkerFieldInfo, nil
	}

	return RouteFinish, nil
}
