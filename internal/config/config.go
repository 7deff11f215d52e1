package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	// 存储模式：local（本地 JSON 文件）、rest（远程 REST 后端）、database（托管数据库）
	StoreMode    string `env:"STORE_MODE" envDefault:"local"`
	LocalDataDir string `env:"LOCAL_DATA_DIR" envDefault:"datas/collections"`
	SessionFile  string `env:"SESSION_FILE" envDefault:"datas/session.json"`
	APIBaseURL   string `env:"API_BASE_URL" envDefault:"http://localhost:3001/api"`
	APIToken     string `env:"API_TOKEN" envDefault:""`

	DBType     string `env:"DBType" envDefault:"sqlite"`
	DSNURL     string `env:"DSN_URL" envDefault:""`
	DBUser     string `env:"DBUser" envDefault:""`
	DBPassword string `env:"DBPassword" envDefault:""`
	DBAddr     string `env:"DBAddr" envDefault:""`
	DBName     string `env:"DBName" envDefault:"builty"`
	DBPath     string `env:"DBPath" envDefault:"datas/builty.db"`
	DBPort     string `env:"DBPort" envDefault:"3306"`

	ExportStorageType     string `env:"EXPORT_STORAGE_TYPE" envDefault:"local"`
	ExportStorageLocalDir string `env:"EXPORT_STORAGE_LOCAL_DIR" envDefault:"datas/exports"`

	// S3 兼容存储配置
	ExportS3Region          string `env:"EXPORT_S3_REGION"`
	ExportS3Bucket          string `env:"EXPORT_S3_BUCKET"`
	ExportS3Prefix          string `env:"EXPORT_S3_PREFIX"`
	ExportS3Endpoint        string `env:"EXPORT_S3_ENDPOINT"`
	ExportS3AccessKeyID     string `env:"EXPORT_S3_ACCESS_KEY_ID"`
	ExportS3SecretAccessKey string `env:"EXPORT_S3_SECRET_ACCESS_KEY"`
	ExportS3SessionToken    string `env:"EXPORT_S3_SESSION_TOKEN"`
	ExportS3ForcePathStyle  bool   `env:"EXPORT_S3_FORCE_PATH_STYLE" envDefault:"false"`

	// 阿里云 OSS 存储配置
	ExportOSSEndpoint        string `env:"EXPORT_OSS_ENDPOINT"`
	ExportOSSBucket          string `env:"EXPORT_OSS_BUCKET"`
	ExportOSSPrefix          string `env:"EXPORT_OSS_PREFIX"`
	ExportOSSAccessKeyID     string `env:"EXPORT_OSS_ACCESS_KEY_ID"`
	ExportOSSAccessKeySecret string `env:"EXPORT_OSS_ACCESS_KEY_SECRET"`

	// 腾讯云 COS 存储配置
	ExportCOSBucketURL string `env:"EXPORT_COS_BUCKET_URL"`
	ExportCOSPrefix    string `env:"EXPORT_COS_PREFIX"`
	ExportCOSSecretID  string `env:"EXPORT_COS_SECRET_ID"`
	ExportCOSSecretKey string `env:"EXPORT_COS_SECRET_KEY"`

	// Cloudflare R2 存储配置
	ExportR2AccountID       string `env:"EXPORT_R2_ACCOUNT_ID"`
	ExportR2Endpoint        string `env:"EXPORT_R2_ENDPOINT"`
	ExportR2Region          string `env:"EXPORT_R2_REGION" envDefault:"auto"`
	ExportR2Bucket          string `env:"EXPORT_R2_BUCKET"`
	ExportR2Prefix          string `env:"EXPORT_R2_PREFIX"`
	ExportR2AccessKeyID     string `env:"EXPORT_R2_ACCESS_KEY_ID"`
	ExportR2SecretAccessKey string `env:"EXPORT_R2_SECRET_ACCESS_KEY"`

	JWTSecret            string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTIssuer            string `env:"JWT_ISSUER" envDefault:"builty-app"`
	JWTExpirationMinutes int    `env:"JWT_EXPIRATION_MINUTES" envDefault:"1440"`
}

func ParseConfig() (Config, error) {
	var Conf Config
	err := env.Parse(&Conf)
	if err != nil {
		logrus.WithError(err).Error("env.Parse error")
		return Config{}, err
	}
	logrus.Debugf("%#v\n", Conf)
	return Conf, nil
}
