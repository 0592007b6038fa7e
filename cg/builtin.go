// builtinAWK is prelude source written ahead of every emitted program's
// functions and BEGIN block: generic AWK runtime support (type predicates, ordering
// keys, histogram/percentile aggregates) that has nothing to do with
// SQL and everything to do with AWK's weak typing, so it survives the
// move from a SQL backend to a dataflow-operator backend unchanged.
package cg

const builtinAWK = `
function agg_percentile(arr, n,
                        local_sorted_value_size, i) {
  # sort the array based on its value
  local_sorted_value_size = asort(arr);
  i = int((n * local_sorted_value_size) / 100);
  i = i > local_sorted_value_size ? local_sorted_value_size : i;
  i = i <= 0 ? 1 : i;
  return arr[i""];
}

function order_key(v, local_typeof) {
  local_typeof = typeof(v);
  if (local_typeof == "strnum" ||
      local_typeof == "number" ||
      local_typeof == "number|bool") {
    if (is_decimal(v)) {
      return sprintf("%24f", (v+0.0));
    } else {
      return sprintf("%20d", (v+0));
    }
  } else {
    return v"";
  }
}

# helper to support histogram calculation in AWK
function agg_histogram(input,
                       input_start,
                       input_size,
                       minval,
                       maxval,
                       numbin, osep, step, cur, bin, i, v, j) {
  if (numbin <= 0 || (maxval < minval)) {
    return "[invalid input]";
  }

  step = (maxval - minval) / numbin;
  if (length(osep) == 0) {
    osep = ":";
  }

  # cleanup the bins
  for (i = 0; i <= numbin+1; i++) {
    bin[i] = 0;
  }

  for (i = input_start; i <= input_size; i++) {
    v = input[i""]; # value of the input
    cur = minval;

    for (j = 1; j <= numbin; j++) {
      if (v < cur) {
        # previous index is the one we are targeting
        j = j -1;
        break
      } else {
        # continue searching
        cur += step;
      }
    }

    bin[j]++;
  }

  # iterate through the *bin* to report the result
  output = array_join(bin, 1, numbin, osep);
  return sprintf("!%d%s%s%s!%d", bin[0], osep, output, osep, bin[numbin+1])
}

function array_join(array, start, end, sep,    result, i) {
	if (sep == "")
   sep = ";"
	result = array[start]
	for (i = start + 1; i <= end; i++)
    result = result sep array[i]
	return result
}

# type conversion and type assertion
function is_number(v, xx) {
  xx = typeof(v);
  return xx == "number" || xx == "strnum" || xx == "number|bool";
}

function is_decimal(v) {
  return (v - int(v)) != 0.0
}

function is_integer(v) {
  return is_number(v) && !is_decimal(v);
}

function is_string(v, xx) {
  xx = typeof(v);
  return xx == "string" || xx == "strnum";
}

function cast(v, ty) {
  if (ty == "int") {
    return int(v+0);
  } else if (ty == "float") {
    return v+0.0;
  } else if (ty == "string") {
    return v"";
  } else {
    return v;
  }
}

function type(v) {
  return typeof(v);
}

function is_null(v) {
  return length(v) == 0;
}

function clear_array(x) {
  split("", x);
}

function kv_make(k, v) {
  return sprintf("%s:%s", k, v);
}

function kv_getv(kv, lv) {
  split(kv, lv, ":");
  return lv[2];
}

# flatten_tuple renders a tuple array into a single string usable as an
# associative-array key, for GROUP/DISTINCT/ORDER's buffering. Field
# order comes from natural numeric iteration, so only the positional
# (0..n-1) entries participate; the name-keyed aliases a tuple also
# carries are skipped to avoid double-counting each field.
function flatten_tuple(t,   i, out) {
  i = 0;
  out = "";
  while ((i) in t) {
    out = (i == 0) ? t[i] : out SUBSEP t[i];
    i++;
  }
  return out;
}

# flatten_tuple_tsv renders a tuple as a tab-separated output line, the
# wire format STORE/DUMP write (mirrors LOAD's split(line, fields, "\t")).
function flatten_tuple_tsv(t,   i, out) {
  i = 0;
  out = "";
  while ((i) in t) {
    out = (i == 0) ? t[i] : out "\t" t[i];
    i++;
  }
  return out;
}

# report_time posts one profiling sample to the collector configured at
# compile time (spec.md §4.6, §4.10): "lineage;partitionId;parents;
# timeMillis", partition 0 for every real operator on this single-
# process backend. PIGLET_PROFILING_URL is set in BEGIN only when
# -profiling was passed, so this is a no-op otherwise.
function report_time(lineage_sig, parents,   data) {
  if (length(PIGLET_PROFILING_URL) == 0) {
    return;
  }
  data = lineage_sig ";0;" parents ";" int((systime() - PIGLET_START_TIME) * 1000);
  system("curl -s -G -o /dev/null --data-urlencode 'data=" data "' " PIGLET_PROFILING_URL "/times &");
}

# report_bootstrap fires once per run from BEGIN, recording the
# sparkcontext->start edge (spec.md §4.6) that gives Start its own
# visit count so TotalRuns is meaningful.
function report_bootstrap() {
  if (length(PIGLET_PROFILING_URL) == 0) {
    return;
  }
  system("curl -s -G -o /dev/null --data-urlencode 'data=start;-1;sparkcontext,-1;0' " PIGLET_PROFILING_URL "/times &");
}

# top_n keeps only the first n entries of a 1-indexed array already
# sorted by order_key, shifting the rest out. No emitter calls it; LIMIT
# uses a per-operator counter instead.
function top_n(arr, n,   i) {
  for (i = n + 1; i in arr; i++) {
    delete arr[i];
  }
}

# nfa_step advances a MATCHER automaton by one input tuple. trans is a
# flattened "from:predicate_result:to" edge table built by the emitter
# per compiled pattern; state is the current state name. Returns the
# next state, or "" if no transition fires (the caller then keeps its
# current state and buffered events).
function nfa_step(trans, ntrans, state, matched,   i, from, ok, to, parts) {
  for (i = 1; i <= ntrans; i++) {
    split(trans[i], parts, ":");
    from = parts[1]; ok = parts[2]; to = parts[3];
    if (from == state && ok == matched) {
      return to;
    }
  }
  return "";
}
`

const builtinGoAWK = `
# go's AWK does not support systime; srand() returns the previous seed,
# which after a bare srand() is the current time in seconds.
function systime(   prev) {
  srand();
  prev = srand();
  return prev;
}

# go's AWK does not support typeof
function typeof(obj,   q, x, z) {
  q = CONVFMT
  CONVFMT = "% g"
    split(" " obj "\1" obj, x, "\1")
    x[1] = obj == x[1]
    x[2] = obj == x[2]
    x[3] = obj == 0
    x[4] = obj "" == +obj
  CONVFMT = q
  z["0001"] = z["1101"] = z["1111"] = "number"
  z["0100"] = z["0101"] = z["0111"] = "string"
  z["1100"] = z["1110"] = "strnum"
  z["0110"] = "undefined"
  return z[x[1] x[2] x[3] x[4]]
}

# go's AWK does not support asort; selection sort is fine at the sizes
# a single GROUP/ORDER bucket buffers in-process.
function asort(a, b,   i, j, n, k, keys, tmp) {
  n = 0;
  for (k in a) {
    keys[++n] = k;
  }
  for (i = 1; i <= n; i++) {
    for (j = i + 1; j <= n; j++) {
      if (a[keys[j]] < a[keys[i]]) {
        tmp = keys[i]; keys[i] = keys[j]; keys[j] = tmp;
      }
    }
  }
  for (i = 1; i <= n; i++) {
    b[i] = a[keys[i]];
  }
  return n;
}

function asorti(a, b,   i, j, n, tmp) {
  n = 0;
  for (i in a) {
    b[++n] = i;
  }
  for (i = 1; i <= n; i++) {
    for (j = i + 1; j <= n; j++) {
      if (b[j] < b[i]) {
        tmp = b[i]; b[i] = b[j]; b[j] = tmp;
      }
    }
  }
  return n;
}
`
