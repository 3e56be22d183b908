// Package repo — типизированные репозитории поверх документного
// хранилища (пакет store).
//
// Репозитории переводят доменные структуры в поля документов и
// обратно и инкапсулируют протокол конкурентного доступа:
//   - одиночные изменения — через store.Mutator (retry при конфликте)
//   - связанные изменения — через store.Tx (атомарно)
//
// Прямых безусловных записей репозитории не делают.
package repo
