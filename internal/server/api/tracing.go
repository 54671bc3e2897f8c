// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package api

import "go.opentelemetry.io/otel"

var tracer = otel.GetTracerProvider().Tracer("github.com/5hadowblaze/DzakandAsri-Housewarming-App/internal/server/api")
