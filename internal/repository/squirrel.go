package repository

import sq "github.com/Masterminds/squirrel"

// psql builds every query in this package. Dollar placeholders; squirrel
// rewrites the ?s inside sq.Expr fragments at ToSql time, which is what
// lets the claim subquery go through the builder.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
