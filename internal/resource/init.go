package resource

import "video-pipeline-service/pkg/manager"

func init() {
	manager.RegisterResourcePlugin(&MySQLResourcePlugin{})
	manager.RegisterResourcePlugin(&RedisResourcePlugin{})
	manager.RegisterResourcePlugin(&MinioResourcePlugin{})
	manager.RegisterResourcePlugin(&KafkaResourcePlugin{})
}
