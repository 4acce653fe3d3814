package workerhttp

import (
	"context"
	"net/http"

	"github.com/ycycse/alluxio/pkg/workerproto"
)

// healthCheck отвечает фиксированной строкой и не зависит ни от одного
// коллаборатора: проба живости должна работать при деградации бэкендов.
func (s *Server) healthCheck(_ context.Context, _ RequestDescriptor, _ []byte) (ResponseContext, error) {
	return textResponse(http.StatusOK, workerproto.HealthBody), nil
}
