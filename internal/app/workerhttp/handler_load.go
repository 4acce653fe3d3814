package workerhttp

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ycycse/alluxio/internal/models"
	"github.com/ycycse/alluxio/internal/usecase/loadsvc"
	"github.com/ycycse/alluxio/pkg/workerproto"
)

// load собирает опции из присутствующих query-параметров и синхронно
// вызывает load-коллаборатора; его строка-подтверждение уходит клиенту
// как есть. Сама загрузка выполняется в фоне, опроса здесь нет.
func (s *Server) load(ctx context.Context, desc RequestDescriptor, _ []byte) (ResponseContext, error) {
	opts, err := loadOptionsOf(desc)
	if err != nil {
		return ResponseContext{}, err
	}

	path, err := requirePath(desc)
	if err != nil {
		return ResponseContext{}, err
	}

	result, err := s.Loads.Load(ctx, path, opts)
	if err != nil {
		return ResponseContext{}, fmt.Errorf("%w: %v", models.ErrMalformedRequest, err)
	}

	return textResponse(http.StatusOK, result), nil
}

// loadOptionsOf строит Options инкрементально: отсутствующий параметр
// сохраняет дефолт билдера.
func loadOptionsOf(desc RequestDescriptor) (loadsvc.Options, error) {
	opts := loadsvc.DefaultOptions()

	if v := desc.Param(workerproto.ParamOpType); v != "" {
		opts.OpType = loadsvc.OpTypeOf(v)
	}
	if v := desc.Param(workerproto.ParamPartialListing); v != "" {
		opts.PartialListing = parseBool(v)
	}
	if v := desc.Param(workerproto.ParamVerify); v != "" {
		opts.Verify = parseBool(v)
	}
	if v := desc.Param(workerproto.ParamBandwidth); v != "" {
		bandwidth, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return loadsvc.Options{}, fmt.Errorf("%w: bad bandwidth %q", models.ErrMalformedRequest, v)
		}
		opts.Bandwidth = bandwidth
	}
	if v := desc.Param(workerproto.ParamVerbose); v != "" {
		opts.Verbose = parseBool(v)
	}
	if v := desc.Param(workerproto.ParamLoadMetadataOnly); v != "" {
		opts.LoadMetadataOnly = parseBool(v)
	}
	if v := desc.Param(workerproto.ParamSkipIfExists); v != "" {
		opts.SkipIfExists = parseBool(v)
	}
	if v := desc.Param(workerproto.ParamFileFilterRegx); v != "" {
		opts.FileFilterRegx = v
	}
	if v := desc.Param(workerproto.ParamProgressFormat); v != "" {
		opts.ProgressFormat = v
	}

	return opts, nil
}

// parseBool трактует нераспознанное значение как false, а не как ошибку
// запроса.
func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
