package proxysdk

// Metric ids are stable for the lifetime of the VM, so each name is defined
// against the host at most once.
var metricIDs = map[string]uint32{}

func defineMetric(metricType MetricType, name string) (uint32, error) {
	if id, ok := metricIDs[name]; ok {
		return id, nil
	}
	id, err := hostDefineMetric(metricType, name)
	if err != nil {
		return 0, err
	}
	metricIDs[name] = id
	return id, nil
}

// Counter is a monotonically increasing host metric.
type Counter struct {
	id uint32
}

// DefineCounter defines (or re-binds) a counter metric by name.
func DefineCounter(name string) (Counter, error) {
	id, err := defineMetric(MetricTypeCounter, name)
	if err != nil {
		return Counter{}, err
	}
	return Counter{id: id}, nil
}

// Increment adds offset to the counter.
func (c Counter) Increment(offset int64) {
	logConcern("increment-counter", hostIncrementMetric(c.id, offset))
}

// Value returns the current counter value.
func (c Counter) Value() uint64 {
	value, err := hostGetMetric(c.id)
	logConcern("get-counter", err)
	return value
}

// Gauge is a host metric that can move in both directions.
type Gauge struct {
	id uint32
}

// DefineGauge defines (or re-binds) a gauge metric by name.
func DefineGauge(name string) (Gauge, error) {
	id, err := defineMetric(MetricTypeGauge, name)
	if err != nil {
		return Gauge{}, err
	}
	return Gauge{id: id}, nil
}

// Record sets the gauge to value.
func (g Gauge) Record(value uint64) {
	logConcern("record-gauge", hostRecordMetric(g.id, value))
}

// Add moves the gauge by offset.
func (g Gauge) Add(offset int64) {
	logConcern("add-gauge", hostIncrementMetric(g.id, offset))
}

// Value returns the current gauge value.
func (g Gauge) Value() uint64 {
	value, err := hostGetMetric(g.id)
	logConcern("get-gauge", err)
	return value
}

// Histogram is a host metric recording a value distribution.
type Histogram struct {
	id uint32
}

// DefineHistogram defines (or re-binds) a histogram metric by name.
func DefineHistogram(name string) (Histogram, error) {
	id, err := defineMetric(MetricTypeHistogram, name)
	if err != nil {
		return Histogram{}, err
	}
	return Histogram{id: id}, nil
}

// Record adds an observation to the histogram.
func (h Histogram) Record(value uint64) {
	logConcern("record-histogram", hostRecordMetric(h.id, value))
}
