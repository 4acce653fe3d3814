package workerhttp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"time"
)

// quietClose отличает штатное исчезновение клиента или остановку сервера
// от действительно испорченного потока запросов.
func quietClose(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, os.ErrDeadlineExceeded)
}

// connState — состояние конечного автомата насоса соединения.
type connState int

const (
	stateAwaitingRequest connState = iota
	stateRequestReceived
	stateDispatched
	stateResponseWritten
	stateClosed
)

func (s connState) String() string {
	switch s {
	case stateAwaitingRequest:
		return "AwaitingRequest"
	case stateRequestReceived:
		return "RequestReceived"
	case stateDispatched:
		return "Dispatched"
	case stateResponseWritten:
		return "ResponseWritten"
	case stateClosed:
		return "Closed"
	}
	return fmt.Sprintf("connState(%d)", int(s))
}

// connPump ведёт одно соединение: запросы строго последовательно, новый
// запрос не читается, пока ответ на предыдущий не записан целиком. Между
// соединениями параллелизм обеспечивает по горутине на каждое.
type connPump struct {
	srv   *Server
	conn  net.Conn
	br    *bufio.Reader
	bw    *bufio.Writer
	state connState
}

func newConnPump(srv *Server, conn net.Conn) *connPump {
	return &connPump{
		srv:   srv,
		conn:  conn,
		br:    bufio.NewReader(conn),
		bw:    bufio.NewWriter(conn),
		state: stateAwaitingRequest,
	}
}

// serve гоняет автомат AwaitingRequest -> RequestReceived -> Dispatched ->
// ResponseWritten и либо возвращается к ожиданию при keep-alive, либо
// закрывает соединение. Любой выход из цикла закрывает соединение ровно
// один раз.
func (p *connPump) serve(ctx context.Context) {
	defer func() {
		p.state = stateClosed
		_ = p.conn.Close()
	}()

	// При остановке сервера снимаем насос с блокирующего чтения.
	stop := context.AfterFunc(ctx, func() {
		_ = p.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		p.state = stateAwaitingRequest

		// Протокольный декодер; насосу достаётся уже распознанный запрос.
		req, err := http.ReadRequest(p.br)
		if err != nil {
			if !quietClose(err) {
				log.Printf("conn %s: closing, bad request stream: %v", p.conn.RemoteAddr(), err)
			}
			return
		}
		p.state = stateRequestReceived

		keepAlive := !req.Close
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			log.Printf("conn %s: closing, failed to read request body: %v", p.conn.RemoteAddr(), err)
			return
		}
		if len(body) == 0 {
			body = nil
		}

		resp, ok := p.dispatch(ctx, Request{Method: req.Method, URI: req.RequestURI, Body: body})
		if !ok {
			return
		}
		p.state = stateDispatched

		if err := p.writeResponse(req, resp, keepAlive); err != nil {
			log.Printf("conn %s: closing, failed to write response: %v", p.conn.RemoteAddr(), err)
			return
		}
		p.state = stateResponseWritten

		if !keepAlive {
			return
		}
	}
}

// dispatch перехватывает неожиданные сбои диспетчеризации. Документированные
// ошибки становятся ответами внутри Dispatch; сюда доходит только паника
// вне контракта коллабораторов, и тогда соединение закрывается намеренно,
// с записью в лог.
func (p *connPump) dispatch(ctx context.Context, req Request) (resp ResponseContext, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("conn %s: closing after dispatch fault on %s %s: %v\n%s",
				p.conn.RemoteAddr(), req.Method, req.URI, r, debug.Stack())
			ok = false
		}
	}()
	return p.srv.Dispatch(ctx, req), true
}

// writeResponse пишет ответ в каркасе keep-alive семантики запроса:
// буферизованный — одним куском, потоковый — заголовки, затем полезная
// нагрузка, затем финальный сброс буфера как терминальный маркер.
func (p *connPump) writeResponse(req *http.Request, resp ResponseContext, keepAlive bool) error {
	if keepAlive {
		if !req.ProtoAtLeast(1, 1) {
			resp.Headers[headerConnection] = "keep-alive"
		}
	} else {
		// Сообщаем клиенту, что соединение будет закрыто.
		resp.Headers[headerConnection] = "close"
	}

	proto := req.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}
	if _, err := fmt.Fprintf(p.bw, "%s %d %s\r\n", proto, resp.Status, http.StatusText(resp.Status)); err != nil {
		return err
	}
	for _, name := range resp.headerNames() {
		if _, err := fmt.Fprintf(p.bw, "%s: %s\r\n", name, resp.Headers[name]); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(p.bw, "\r\n"); err != nil {
		return err
	}

	if !resp.Buffered() {
		if err := p.bw.Flush(); err != nil {
			return err
		}
	}
	if _, err := p.bw.Write(resp.Payload()); err != nil {
		return err
	}
	return p.bw.Flush()
}
