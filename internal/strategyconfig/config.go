package strategyconfig

// Config는 스크리닝 전략의 전체 설정
type Config struct {
	Meta     Meta     `yaml:"meta" json:"meta"`
	Universe Universe `yaml:"universe" json:"universe"`
	Screen   Screen   `yaml:"screen" json:"screen"`
	Schedule Schedule `yaml:"schedule" json:"schedule"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID  string `yaml:"strategy_id" json:"strategy_id"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// Universe 스크리닝 대상 종목
// 비어 있으면 기본 대형주 유니버스 사용
type Universe struct {
	Tickers []string `yaml:"tickers" json:"tickers"`
	File    string   `yaml:"file" json:"file"` // comma/newline separated ticker file
}

// Screen 평가 파라미터
type Screen struct {
	Source  string  `yaml:"source" json:"source"` // yahoo | postgres (empty: env default)
	Period  string  `yaml:"period" json:"period"`
	Weights Weights `yaml:"weights" json:"weights"`
	TopN    *int    `yaml:"top_n" json:"top_n"` // nil: all
	Workers int     `yaml:"workers" json:"workers"`
}

// Weights 서브 스코어 가중치
type Weights struct {
	Value    float64 `yaml:"value" json:"value"`
	Momentum float64 `yaml:"momentum" json:"momentum"`
	Risk     float64 `yaml:"risk" json:"risk"`
}

// Schedule 정기 스크리닝
type Schedule struct {
	Cron string `yaml:"cron" json:"cron"` // 6-field (with seconds); empty: disabled
}
