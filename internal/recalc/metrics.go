package recalc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var recalcAssetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "atlas_recalc_assets_total",
	Help: "Per-asset composite recalculations by result.",
}, []string{"result"})
