package bencode

// Validate checks that buf is exactly one well-formed document without
// building a value tree. It applies the same rules as Unmarshal, so it
// returns nil exactly when Unmarshal would succeed.
func Validate(buf []byte) error {
	return ValidateWithOptions(buf, DefaultDecodeOptions())
}

// frame is an open container on the validator stack.
type frame struct {
	tag byte // 'l' or 'd'

	// dict state
	awaitingValue bool
	hasKey        bool
	lastKey       string
	seen          map[string]struct{}
}

// ValidateWithOptions is like Validate with explicit options.
func ValidateWithOptions(buf []byte, opts DecodeOptions) error {
	if len(buf) == 0 {
		return newError(UnexpectedEnd, 0, "empty input")
	}

	var (
		maxDepth = opts.maxDepth()
		stack    []frame
		pos      int
	)
	for {
		if pos >= len(buf) {
			return newError(UnbalancedContainer, pos, "%d containers not closed", len(stack))
		}
		c := buf[pos]

		// Key position inside a dict.
		if n := len(stack); n > 0 && stack[n-1].tag == 'd' && !stack[n-1].awaitingValue {
			top := &stack[n-1]
			if c == 'e' {
				stack = stack[:n-1]
				pos++
				if done := completeValue(stack); done {
					break
				}
				continue
			}
			if !isDigit(c) {
				return newError(InvalidDictKey, pos, "key starts with %q", c)
			}
			start, end, err := scanString(buf, pos)
			if err != nil {
				return err
			}
			key := string(buf[start:end])
			if opts.Lenient {
				if top.seen == nil {
					top.seen = make(map[string]struct{})
				}
				if _, dup := top.seen[key]; dup {
					return newError(DuplicateKey, pos, "%q", key)
				}
				top.seen[key] = struct{}{}
			}
			if top.hasKey {
				if err := checkKeyOrder(top.lastKey, key, pos, opts.Lenient); err != nil {
					return err
				}
			}
			top.lastKey, top.hasKey, top.awaitingValue = key, true, true
			pos = end
			continue
		}

		// Value position.
		switch {
		case isDigit(c):
			_, end, err := scanString(buf, pos)
			if err != nil {
				return err
			}
			pos = end
		case c == 'i':
			_, next, err := scanInteger(buf, pos)
			if err != nil {
				return err
			}
			pos = next
		case c == 'l' || c == 'd':
			if len(stack) >= maxDepth {
				return newError(NestingTooDeep, pos, "more than %d nested containers", maxDepth)
			}
			stack = append(stack, frame{tag: c})
			pos++
			continue
		case c == 'e':
			n := len(stack)
			if n == 0 || stack[n-1].tag != 'l' {
				return newError(UnbalancedContainer, pos, "unexpected 'e'")
			}
			stack = stack[:n-1]
			pos++
		default:
			return newError(InvalidTag, pos, "unexpected byte %q", c)
		}

		if done := completeValue(stack); done {
			break
		}
	}

	if pos != len(buf) {
		return newError(TrailingData, pos, "%d bytes left", len(buf)-pos)
	}
	return nil
}

// completeValue records that a value has just ended inside the innermost
// open container and reports whether the document itself is complete.
func completeValue(stack []frame) bool {
	n := len(stack)
	if n == 0 {
		return true
	}
	if stack[n-1].tag == 'd' {
		stack[n-1].awaitingValue = false
	}
	return false
}
