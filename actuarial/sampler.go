package actuarial

import (
	"math"
	"math/rand"
	"time"
)

// NormalSampler генератор стандартных нормальных отклонений по методу Бокса-Мюллера.
// Не потокобезопасен: каждый вызывающий должен использовать свой экземпляр.
type NormalSampler struct {
	rng *rand.Rand
}

// NewNormalSampler создает сэмплер со случайным seed
func NewNormalSampler() *NormalSampler {
	return NewSeededNormalSampler(time.Now().UnixNano())
}

// NewSeededNormalSampler создает сэмплер с фиксированным seed (для тестов и воспроизводимости)
func NewSeededNormalSampler(seed int64) *NormalSampler {
	return &NormalSampler{rng: rand.New(rand.NewSource(seed))}
}

// Next возвращает одно стандартное нормальное отклонение z ~ N(0, 1).
// z = sqrt(-2*ln(u1)) * cos(2*pi*u2), где u1, u2 - независимые uniform(0,1).
// u1 перегенерируется, если выпал ровно 0, чтобы избежать ln(0).
func (s *NormalSampler) Next() float64 {
	u1 := s.rng.Float64()
	for u1 == 0 {
		u1 = s.rng.Float64()
	}
	u2 := s.rng.Float64()

	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
