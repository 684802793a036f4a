// Package plan turns one validated submission into an ordered list of
// resolution steps.
//
// Steps form a directed acyclic graph: a model depends on the step that
// supplies its manufacturer, a guitar on the step that supplies its model, and
// specifications and photos on their owning entity. The graph is sorted
// topologically with ties broken by entity tier (manufacturer, product line,
// model, guitar, specification/photo) and then by declaration order, so the
// same submission always yields the same order.
//
// References are bound here. A model's manufacturer_name binds to the
// submission's own manufacturer block when the names are equal ignoring case;
// otherwise a reference step looks the manufacturer up by exact name. A
// guitar's model_reference binds to the submission's model block only when
// manufacturer, name, and integer year all match.
package plan
