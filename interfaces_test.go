package gtx

import (
	"github.com/xdbsoft/gtx/api"
)

type checkEvaluator interface {
	api.CheckEvaluator
}
