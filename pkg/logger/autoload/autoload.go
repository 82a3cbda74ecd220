package autoload

import (
	configx "github.com/voicedeskai/voicedesk/pkg/config"
	logx "github.com/voicedeskai/voicedesk/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
