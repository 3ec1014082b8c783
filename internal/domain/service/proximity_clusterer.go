package service

import (
	"fmt"
	"math"

	"urban-pulse/internal/domain/helper"
	"urban-pulse/internal/domain/model"
)

// ProximityClusterer は距離しきい値による連結成分で地点をグループ化する
// 入出力以外の状態を持たないため、異なる入力に対して並行に呼び出してよい
type ProximityClusterer struct {
	thresholdMeters float64
	minGroupSize    int
}

// NewProximityClusterer は新しいProximityClustererを作成する
func NewProximityClusterer(thresholdMeters float64, minGroupSize int) (*ProximityClusterer, error) {
	if math.IsNaN(thresholdMeters) || math.IsInf(thresholdMeters, 0) || thresholdMeters < 0 {
		return nil, &model.ValidationError{Field: "threshold", Message: fmt.Sprintf("しきい値は0以上の有限値で指定してください: %v", thresholdMeters)}
	}
	if minGroupSize < 1 {
		return nil, &model.ValidationError{Field: "min_group_size", Message: fmt.Sprintf("最小グループサイズは1以上で指定してください: %d", minGroupSize)}
	}
	return &ProximityClusterer{
		thresholdMeters: thresholdMeters,
		minGroupSize:    minGroupSize,
	}, nil
}

// NewDefaultProximityClusterer は100m・2件の既定値でクラスタラーを作成する
func NewDefaultProximityClusterer() *ProximityClusterer {
	return &ProximityClusterer{
		thresholdMeters: model.DefaultClusterThresholdMeters,
		minGroupSize:    model.DefaultClusterMinGroupSize,
	}
}

// ThresholdMeters 隣接とみなす距離
func (c *ProximityClusterer) ThresholdMeters() float64 { return c.thresholdMeters }

// MinGroupSize 出力するクラスタの最小メンバー数
func (c *ProximityClusterer) MinGroupSize() int { return c.minGroupSize }

// Cluster は地点を推移的な近接関係の連結成分に分割する
// 不正な座標（非有限値・範囲外）の地点は読み飛ばす
func (c *ProximityClusterer) Cluster(points []model.GeoPoint) []model.Cluster {
	valid := make([]model.GeoPoint, 0, len(points))
	for _, p := range points {
		if p.Valid() {
			valid = append(valid, p)
		}
	}

	n := len(valid)
	if n == 0 {
		return []model.Cluster{}
	}

	// 各ペアは一度だけ評価する
	adj := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if helper.DistanceBetween(valid[i], valid[j]) <= c.thresholdMeters {
				adj[i] = append(adj[i], j)
				adj[j] = append(adj[j], i)
			}
		}
	}

	visited := make([]bool, n)
	clusters := []model.Cluster{}

	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true
		stack := []int{i}
		var members []model.GeoPoint

		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			members = append(members, valid[u])
			for _, v := range adj[u] {
				if !visited[v] {
					visited[v] = true
					stack = append(stack, v)
				}
			}
		}

		if len(members) < c.minGroupSize {
			continue
		}
		clusters = append(clusters, model.Cluster{
			Center:  helper.Centroid(members),
			Members: members,
		})
	}

	return clusters
}
