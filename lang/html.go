package lang

import (
	"context"
	"strconv"
	"strings"
)

// RenderValue serializes v to HTML.
//
// Scalars render as their text, lists as the concatenation of their items,
// dictionaries as a <dl> of their entries in key order, and markup through
// host.RenderNode with env as the caller's scope.
func RenderValue(ctx context.Context, v Value, env *Env, host Host) (string, error) {
	var sb strings.Builder

	if err := renderValue(ctx, &sb, v, env, hostOrDefault(host)); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func renderValue(
	ctx context.Context,
	sb *strings.Builder,
	v Value,
	env *Env,
	host Host,
) error {
	switch v.kind {
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))

	case KindInt:
		sb.WriteString(strconv.Itoa(v.i))

	case KindStr, KindUniqueID:
		sb.WriteString(v.s)

	case KindMarkup:
		if v.node == nil {
			return nil
		}

		s, err := host.RenderNode(ctx, v.node, env)
		if err != nil {
			return err
		}

		sb.WriteString(s)

	case KindList:
		for _, item := range v.list {
			if err := renderValue(ctx, sb, item, env, host); err != nil {
				return err
			}
		}

	case KindDict:
		sb.WriteString("<dl>")

		for _, k := range v.Keys() {
			sb.WriteString("<dt>")
			sb.WriteString(k.Name)
			sb.WriteString("</dt><dd>")

			if err := renderValue(ctx, sb, v.dict[k], env, host); err != nil {
				return err
			}

			sb.WriteString("</dd>")
		}

		sb.WriteString("</dl>")

	default:
		return ErrType.Wrapf("cannot render %s value", v.kind)
	}

	return nil
}
