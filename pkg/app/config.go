package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/lk2023060901/kidlingo/pkg/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，KIDLINGO_API_BASE_URL 对应 api.base_url
const EnvPrefix = "KIDLINGO"

var (
	configPath string
	logPath    string
)

// RegisterFlags 注册公共命令行参数，重复调用无副作用
func RegisterFlags(fs *pflag.FlagSet) {
	if fs.Lookup("config") == nil {
		fs.StringVarP(&configPath, "config", "c", "", "path to config file (optional)")
	}
	if fs.Lookup("log.path") == nil {
		fs.StringVar(&logPath, "log.path", "", "write logs to this file as well")
	}
}

// LoadConfig 把配置解析到 target，并返回底层 Manager 以便后续 Watch
// 优先级：1. 命令行显式参数 > 2. 环境变量 > 3. 配置文件 > 4. defaults
// defaults 一般是填好默认值的同类型结构体，用于让所有 key 都能被环境变量覆盖
func LoadConfig(target any, defaults any, opts ...config.Option) (config.Manager, error) {
	return LoadConfigFrom(pflag.CommandLine, os.Args[1:], target, defaults, opts...)
}

// LoadConfigFrom 与 LoadConfig 相同，但使用指定的 FlagSet 和参数
func LoadConfigFrom(fs *pflag.FlagSet, args []string, target any, defaults any, opts ...config.Option) (config.Manager, error) {
	RegisterFlags(fs)
	if !fs.Parsed() {
		if err := fs.Parse(args); err != nil {
			return nil, errors.Wrap(err, "parse flags")
		}
	}

	// .env 只补充尚未设置的环境变量，不存在时忽略
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if defaults != nil {
		flat, err := FlattenDefaults(defaults)
		if err != nil {
			return nil, err
		}
		for key, value := range flat {
			v.SetDefault(key, value)
		}
	}

	if fs.Changed("log.path") {
		v.Set("log.enable_file", true)
		v.Set("log.output_path", logPath)
	}

	mgr := config.NewManager(append(opts, config.WithViper(v))...)

	// 配置文件可选：显式指定时必须存在，否则依次尝试环境变量和当前目录
	path := configPath
	explicit := fs.Changed("config")
	if !explicit {
		if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
			path, explicit = env, true
		} else if _, err := os.Stat("learner.yaml"); err == nil {
			path = "learner.yaml"
		}
	}
	if path != "" {
		if err := mgr.LoadFile(path); err != nil {
			if explicit || !errors.Is(err, config.ErrConfigFileNotFound) {
				return nil, err
			}
		}
	}

	if err := mgr.Unmarshal(target); err != nil {
		return nil, err
	}

	if p := v.GetString("log.output_path"); p != "" && v.GetBool("log.enable_file") {
		_ = os.MkdirAll(filepath.Dir(p), 0o755)
	}
	return mgr, nil
}

// FlattenDefaults 把结构体按 mapstructure tag 展开为 "a.b.c" 形式的键
func FlattenDefaults(defaults any) (map[string]any, error) {
	nested := map[string]any{}
	if err := mapstructure.Decode(defaults, &nested); err != nil {
		return nil, errors.Wrap(err, "decode defaults")
	}
	flat := map[string]any{}
	flatten("", nested, flat)
	return flat, nil
}

func flatten(prefix string, in map[string]any, out map[string]any) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok && len(child) > 0 {
			flatten(key, child, out)
			continue
		}
		out[key] = v
	}
}

// GetConfigPath 返回命令行指定的配置文件路径
func GetConfigPath() string {
	return configPath
}
