/*
 * MIT License
 *
 * Copyright (c) 2023 EASL and the vHive community
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package generator

import (
	"math"
	"math/rand"
	"time"
)

// NormalSampler draws from arbitrary normal distributions using the Marsaglia
// polar method. A sampler owns its random source and is not thread safe.
type NormalSampler struct {
	normalRand *rand.Rand
}

func NewNormalSampler(seed int64) *NormalSampler {
	return &NormalSampler{
		normalRand: rand.New(rand.NewSource(seed)),
	}
}

// NewTimeSeededNormalSampler seeds from the nanosecond clock. Every worker
// process builds its own, so spawned workers never replay a sequence.
func NewTimeSeededNormalSampler() *NormalSampler {
	return NewNormalSampler(time.Now().UnixNano())
}

// uniform returns a value in [-1, 1).
func (s *NormalSampler) uniform() float64 {
	return 2*s.normalRand.Float64() - 1
}

// StandardNormal returns a draw from N(0, 1).
func (s *NormalSampler) StandardNormal() float64 {
	var x, y, sq float64

	for {
		x = s.uniform()
		y = s.uniform()
		sq = x*x + y*y

		if sq > 0 && sq < 1 {
			break
		}
	}

	return x * math.Sqrt(-2*math.Log(sq)/sq)
}

// Sample returns a draw from N(mu, sigma) as sigma * N(0, 1) + mu.
func (s *NormalSampler) Sample(mu, sigma float64) float64 {
	return sigma*s.StandardNormal() + mu
}
