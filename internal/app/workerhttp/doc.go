// Package workerhttp реализует data-plane HTTP-интерфейс кеширующего
// воркера поверх сырых TCP-соединений. Основные эндпоинты:
//   - GET /file/{id}/page/{index}?offset=&length= — позиционное чтение страницы, тело отдаётся потоком.
//   - POST|PUT /file/{id}/page/{index} — запись страницы, исход всегда в теле {success, message}.
//   - GET /files?path= — листинг каталога в UFS.
//   - GET /info?path= — статус одного файла, та же форма ответа, что у листинга.
//   - GET /load?path=&... — постановка/остановка/прогресс фоновой загрузки.
//   - GET /health — фиксированная строка для liveness-проб.
//
// Разбор байтов HTTP/1.x делегирован протокольному декодеру; пакет владеет
// всем после распознанного запроса: дескриптором URI, таблицей маршрутов,
// обработчиками операций и насосом соединения с keep-alive семантикой.
package workerhttp
